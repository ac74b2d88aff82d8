package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	gateway "github.com/MarcusPiperAllen/curve-sms-safety-project/internal/gateways"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCarrier struct {
	sent []gateway.SendRequest
	err  error
}

func (f *fakeCarrier) Send(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, *req)
	return &gateway.SendResponse{SID: "SM1", Status: "sent"}, nil
}

func welcomeMessage(t *testing.T, phone string) *queue.Message {
	t.Helper()
	data, err := json.Marshal(WelcomeJob{Phone: phone})
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Data: data}
}

func TestWelcomeProcessor_SendsGreeting(t *testing.T) {
	carrier := &fakeCarrier{}
	idem := NewIdempotencyService(newMockRedisAdapter(), DefaultIdempotencyConfig())
	p := NewWelcomeProcessor(carrier, idem)

	err := p.Process(context.Background(), welcomeMessage(t, "+15551112222"))
	require.NoError(t, err)

	require.Len(t, carrier.sent, 1)
	assert.Equal(t, "+15551112222", carrier.sent[0].To)
	assert.Equal(t, WelcomeText, carrier.sent[0].Body)
}

func TestWelcomeProcessor_SkipsAlreadyWelcomed(t *testing.T) {
	carrier := &fakeCarrier{}
	idem := NewIdempotencyService(newMockRedisAdapter(), DefaultIdempotencyConfig())
	p := NewWelcomeProcessor(carrier, idem)
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, welcomeMessage(t, "+15551112222")))
	require.NoError(t, p.Process(ctx, welcomeMessage(t, "+15551112222")))

	assert.Len(t, carrier.sent, 1)
}

func TestWelcomeProcessor_CarrierFailureRetries(t *testing.T) {
	carrier := &fakeCarrier{err: errors.New("carrier down")}
	idem := NewIdempotencyService(newMockRedisAdapter(), DefaultIdempotencyConfig())
	p := NewWelcomeProcessor(carrier, idem)

	err := p.Process(context.Background(), welcomeMessage(t, "+15553334444"))
	assert.Error(t, err)

	// Lock is released and the retry counter moved, so a redelivery goes through
	carrier.err = nil
	err = p.Process(context.Background(), welcomeMessage(t, "+15553334444"))
	require.NoError(t, err)
	assert.Len(t, carrier.sent, 1)
}

func TestWelcomeProcessor_DropsMalformedJob(t *testing.T) {
	carrier := &fakeCarrier{}
	idem := NewIdempotencyService(newMockRedisAdapter(), DefaultIdempotencyConfig())
	p := NewWelcomeProcessor(carrier, idem)

	err := p.Process(context.Background(), &queue.Message{ID: "1-0", Data: []byte("{}")})
	require.NoError(t, err)
	assert.Empty(t, carrier.sent)
}

package gateway

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, handler)
	}()
	t.Cleanup(func() { _ = ln.Close() })

	client, err := NewClient(&Config{
		BaseURL:           "http://carrier.test",
		FromNumber:        "+15550001111",
		StatusCallbackURL: "http://alerts.test/sms/status",
		Timeout:           2 * time.Second,
	})
	require.NoError(t, err)

	client.client.Dial = func(addr string) (net.Conn, error) {
		return ln.Dial()
	}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		client, err := NewClient(nil)
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "config is required")
	})

	t.Run("missing base url returns error", func(t *testing.T) {
		client, err := NewClient(&Config{FromNumber: "+15550001111"})
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("missing from number returns error", func(t *testing.T) {
		client, err := NewClient(&Config{BaseURL: "http://carrier.test"})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestClient_Send(t *testing.T) {
	var got sendPayload
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		require.Equal(t, sendPath, string(ctx.Path()))
		require.NoError(t, json.Unmarshal(ctx.PostBody(), &got))

		ctx.SetStatusCode(fasthttp.StatusCreated)
		ctx.SetContentType("application/json")
		_ = json.NewEncoder(ctx).Encode(SendResponse{SID: "SM123", Status: "sent"})
	})

	resp, err := client.Send(context.Background(), &SendRequest{
		To:   "+15552223333",
		Body: "Pool closed until Friday",
	})
	require.NoError(t, err)

	assert.Equal(t, "SM123", resp.SID)
	assert.Equal(t, "sent", resp.Status)
	assert.Equal(t, "+15552223333", got.To)
	assert.Equal(t, "+15550001111", got.From)
	assert.Equal(t, "Pool closed until Friday", got.Body)
	assert.Equal(t, "http://alerts.test/sms/status", got.StatusCallback)
}

func TestClient_SendRejected(t *testing.T) {
	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString(`{"error":"invalid to number"}`)
	})

	resp, err := client.Send(context.Background(), &SendRequest{
		To:   "not-a-number",
		Body: "hello",
	})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrCarrierRejected)
}

package processor

import (
	"context"
	"encoding/json"
	"errors"

	gateway "github.com/MarcusPiperAllen/curve-sms-safety-project/internal/gateways"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/queue"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
)

// WelcomeText is sent once to subscribers who sign up through the web form.
// Text-in subscribers get the same wording as the immediate reply instead.
const WelcomeText = "You're signed up for community alerts. Reply STOP to unsubscribe."

// WelcomeJob is the queue payload for one pending welcome SMS.
type WelcomeJob struct {
	Phone string `json:"phone"`
}

type CarrierClient interface {
	Send(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error)
}

// WelcomeProcessor drains the welcome queue and sends one greeting SMS per
// new subscriber, with idempotency so a redelivered job never texts twice.
type WelcomeProcessor struct {
	client      CarrierClient
	idempotency *IdempotencyService
}

func NewWelcomeProcessor(client CarrierClient, idempotency *IdempotencyService) *WelcomeProcessor {
	return &WelcomeProcessor{
		client:      client,
		idempotency: idempotency,
	}
}

func (p *WelcomeProcessor) GetType() string {
	return "welcome"
}

func (p *WelcomeProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var job WelcomeJob
	if err := json.Unmarshal(queueMessage.Data, &job); err != nil {
		logger.Error("Failed to unmarshal welcome job", "error", err)
		return err
	}
	if job.Phone == "" {
		logger.Warn("Welcome job without phone, dropping", "queue_id", queueMessage.ID)
		return nil
	}

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, "welcome:"+job.Phone)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			logger.Info("Welcome already sent, skipping", "phone", job.Phone)
			return nil
		}
		if errors.Is(err, ErrMaxRetriesExceeded) {
			logger.Error("Giving up on welcome SMS", "phone", job.Phone)
			return nil
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return errors.New("lock held by another consumer")
		}
		return err
	}

	defer func() {
		if procCtx.lockAcquired {
			p.idempotency.ReleaseLock(ctx, procCtx)
		}
	}()

	logger.Info("Sending welcome SMS", "phone", job.Phone, "retry_count", procCtx.RetryCount)

	_, err = p.client.Send(ctx, &gateway.SendRequest{
		To:   job.Phone,
		Body: WelcomeText,
	})
	if err != nil {
		logger.Error("Failed to send welcome SMS", "phone", job.Phone, "error", err)
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			logger.Error("Failed to mark failure", "phone", job.Phone, "error", markErr)
		}
		return err
	}

	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		logger.Error("Failed to mark success", "phone", job.Phone, "error", markErr)
	}

	return nil
}

package services

import (
	"context"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/queue"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
)

type SubscriberRepository interface {
	UpsertActive(ctx context.Context, phone string) (*model.Subscriber, error)
	Deactivate(ctx context.Context, phone string) error
	ListActive(ctx context.Context) ([]*model.Subscriber, error)
	IsActive(ctx context.Context, phone string) (bool, error)
}

// WelcomeJob mirrors processor.WelcomeJob; kept local so the service does
// not import the consumer side of the queue.
type welcomeJob struct {
	Phone string `json:"phone"`
}

// SubscriberService owns the opt-in/opt-out lifecycle. All phone numbers are
// normalized before they reach the repository so one resident never ends up
// as two rows.
type SubscriberService struct {
	repo         SubscriberRepository
	welcomeQueue *queue.Queue
}

func NewSubscriberService(repo SubscriberRepository, welcomeQueue *queue.Queue) *SubscriberService {
	return &SubscriberService{
		repo:         repo,
		welcomeQueue: welcomeQueue,
	}
}

// Subscribe opts a number in. Re-subscribing an inactive number reactivates
// it, subscribing an active one is a no-op upsert.
func (s *SubscriberService) Subscribe(ctx context.Context, rawPhone string) (*model.Subscriber, error) {
	phone, err := model.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.UpsertActive(ctx, phone)
	if err != nil {
		return nil, err
	}
	logger.Info("subscriber opted in", "phone", phone)
	return sub, nil
}

// SubscribeFromWeb opts a number in and queues a welcome SMS. Text-in
// subscribers get their confirmation as the synchronous webhook reply
// instead, so only the web path enqueues.
func (s *SubscriberService) SubscribeFromWeb(ctx context.Context, rawPhone string) (*model.Subscriber, error) {
	sub, err := s.Subscribe(ctx, rawPhone)
	if err != nil {
		return nil, err
	}
	if s.welcomeQueue != nil {
		if _, err := s.welcomeQueue.PublishJSON(ctx, welcomeJob{Phone: sub.Phone}, nil); err != nil {
			// The subscription itself stands, the greeting is best effort
			logger.Error("failed to enqueue welcome SMS", "phone", sub.Phone, "error", err)
		}
	}
	return sub, nil
}

// Unsubscribe flips the subscriber to inactive. The row stays for the audit
// trail.
func (s *SubscriberService) Unsubscribe(ctx context.Context, rawPhone string) error {
	phone, err := model.NormalizePhone(rawPhone)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, phone); err != nil {
		return err
	}
	logger.Info("subscriber opted out", "phone", phone)
	return nil
}

func (s *SubscriberService) ListActive(ctx context.Context) ([]*model.Subscriber, error) {
	return s.repo.ListActive(ctx)
}

func (s *SubscriberService) IsActive(ctx context.Context, rawPhone string) (bool, error) {
	phone, err := model.NormalizePhone(rawPhone)
	if err != nil {
		return false, err
	}
	return s.repo.IsActive(ctx, phone)
}

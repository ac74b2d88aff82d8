package services

import (
	"context"
	"errors"
	"time"

	gateway "github.com/MarcusPiperAllen/curve-sms-safety-project/internal/gateways"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/prom"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/worker"
)

var ErrNoSubscribers = errors.New("no active subscribers")

type SubscriberLister interface {
	ListActive(ctx context.Context) ([]*model.Subscriber, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) (*model.Alert, error)
	ListWithDeliveryCounts(ctx context.Context) ([]*model.AlertWithDeliveryCounts, error)
}

type DeliveryWriter interface {
	CreatePending(ctx context.Context, alertID int64, phones []string) error
	Transition(ctx context.Context, alertID int64, phone string, next model.DeliveryStatus, carrierSID string) (bool, error)
}

type Carrier interface {
	Send(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error)
}

// BroadcastService is the delivery engine: it snapshots the active subscriber
// set, persists one pending DeliveryRecord per recipient, then fans sends out
// over a worker pool with one retry per recipient. Per-recipient outcomes are
// written through the delivery state machine so a late callback can still
// upgrade them.
type BroadcastService struct {
	subscribers SubscriberLister
	alerts      AlertRepository
	deliveries  DeliveryWriter
	carrier     Carrier
	workers     int
	retryDelay  time.Duration
}

func NewBroadcastService(subscribers SubscriberLister, alerts AlertRepository, deliveries DeliveryWriter, carrier Carrier, workers int, retryDelay time.Duration) *BroadcastService {
	if workers <= 0 {
		workers = 8
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &BroadcastService{
		subscribers: subscribers,
		alerts:      alerts,
		deliveries:  deliveries,
		carrier:     carrier,
		workers:     workers,
		retryDelay:  retryDelay,
	}
}

// Broadcast sends body to every active subscriber. The recipient set is the
// snapshot taken here, subscribers joining mid-broadcast are not included.
// With zero active subscribers ErrNoSubscribers is returned and no alert row
// is created.
func (s *BroadcastService) Broadcast(ctx context.Context, body string) (*model.BroadcastResult, error) {
	body, err := model.ValidateAlertBody(body)
	if err != nil {
		return nil, err
	}

	subs, err := s.subscribers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	phones := dedupePhones(subs)

	if len(phones) == 0 {
		logger.Info("broadcast skipped, no active subscribers")
		return nil, ErrNoSubscribers
	}

	alert, err := s.alerts.Create(ctx, &model.Alert{Body: body})
	if err != nil {
		return nil, err
	}

	if err := s.deliveries.CreatePending(ctx, alert.ID, phones); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]model.RecipientResult, len(phones))

	pool := worker.NewPool(s.workers)
	defer pool.Close()

	for i, phone := range phones {
		i, phone := i, phone
		pool.Submit(func() {
			results[i] = s.sendOne(ctx, alert.ID, phone, body)
		})
	}
	pool.Wait()

	result := &model.BroadcastResult{
		AlertID:         alert.ID,
		TotalRecipients: len(phones),
		Results:         results,
	}
	for _, r := range results {
		if r.Status == model.DeliveryFailed {
			result.Failed++
		} else {
			result.Sent++
		}
		prom.AddBroadcastRecipients(1, string(r.Status))
	}
	prom.ObserveBroadcastDuration(time.Since(start).Seconds())

	logger.Info("broadcast complete",
		"alert_id", alert.ID,
		"total", result.TotalRecipients,
		"sent", result.Sent,
		"failed", result.Failed,
		"duration", time.Since(start))

	return result, nil
}

// sendOne attempts one carrier send with a single retry after a fixed delay.
// The outcome is written through the delivery state machine, so if the
// carrier's delivered callback already arrived the conditional write is a
// no-op instead of a downgrade.
func (s *BroadcastService) sendOne(ctx context.Context, alertID int64, phone, body string) model.RecipientResult {
	res := model.RecipientResult{Phone: phone}

	resp, err := s.carrier.Send(ctx, &gateway.SendRequest{To: phone, Body: body})
	if err != nil {
		logger.Warn("carrier send failed, retrying once", "phone", phone, "error", err)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(s.retryDelay):
			res.Retried = true
			resp, err = s.carrier.Send(ctx, &gateway.SendRequest{To: phone, Body: body})
		}
	}

	if err != nil {
		logger.Error("carrier send failed permanently", "phone", phone, "error", err)
		res.Status = model.DeliveryFailed
		res.Error = err.Error()
		if _, terr := s.deliveries.Transition(ctx, alertID, phone, model.DeliveryFailed, ""); terr != nil {
			logger.Error("failed to record delivery failure", "alert_id", alertID, "phone", phone, "error", terr)
		}
		return res
	}

	res.Status = model.DeliverySent
	res.CarrierSID = resp.SID
	if _, terr := s.deliveries.Transition(ctx, alertID, phone, model.DeliverySent, resp.SID); terr != nil {
		logger.Error("failed to record delivery send", "alert_id", alertID, "phone", phone, "error", terr)
	}
	return res
}

// ListAlerts returns past broadcasts with their aggregate delivery counters.
func (s *BroadcastService) ListAlerts(ctx context.Context) ([]*model.AlertWithDeliveryCounts, error) {
	return s.alerts.ListWithDeliveryCounts(ctx)
}

// dedupePhones keeps the first occurrence of each phone, preserving the
// repository ordering.
func dedupePhones(subs []*model.Subscriber) []string {
	seen := make(map[string]struct{}, len(subs))
	phones := make([]string, 0, len(subs))
	for _, sub := range subs {
		if _, ok := seen[sub.Phone]; ok {
			continue
		}
		seen[sub.Phone] = struct{}{}
		phones = append(phones, sub.Phone)
	}
	return phones
}

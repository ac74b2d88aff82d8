package services

import (
	"context"
	"errors"
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/prom"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/redis"
)

// StatusCallback is the carrier's asynchronous delivery report, posted as a
// form to /sms/status.
type StatusCallback struct {
	MessageSID    string
	MessageStatus string
	To            string
	ErrorCode     string
}

// carrierStatuses maps the carrier's status vocabulary onto the delivery
// state machine. Anything missing here is logged and ignored.
var carrierStatuses = map[string]model.DeliveryStatus{
	"delivered":   model.DeliveryDelivered,
	"sent":        model.DeliverySent,
	"failed":      model.DeliveryFailed,
	"undelivered": model.DeliveryFailed,
}

type DeliveryReader interface {
	Transition(ctx context.Context, alertID int64, phone string, next model.DeliveryStatus, carrierSID string) (bool, error)
	FindByCarrierSID(ctx context.Context, sid string) (*model.DeliveryRecord, error)
	FindLatestOpenByPhone(ctx context.Context, phone string) (*model.DeliveryRecord, error)
}

const callbackDedupTTL = 24 * time.Hour

// DeliveryService reconciles carrier status callbacks into delivery records.
// Callbacks can arrive out of order, duplicated, or before the broadcast
// engine has written its own sent outcome; the state machine's conditional
// write absorbs all three.
type DeliveryService struct {
	deliveries DeliveryReader
	dedup      redis.RedisAdapter
}

func NewDeliveryService(deliveries DeliveryReader, dedup redis.RedisAdapter) *DeliveryService {
	return &DeliveryService{
		deliveries: deliveries,
		dedup:      dedup,
	}
}

// HandleCallback processes one status callback. It never fails the caller
// over an unknown status or unmatched record: the carrier expects a 200 and
// retries on anything else, which would only replay the same callback.
func (s *DeliveryService) HandleCallback(ctx context.Context, cb *StatusCallback) error {
	next, ok := carrierStatuses[cb.MessageStatus]
	if !ok {
		logger.Warn("unknown carrier status, ignoring", "sid", cb.MessageSID, "status", cb.MessageStatus)
		return nil
	}

	prom.IncDeliveryCallback(string(next))

	if cb.ErrorCode != "" {
		logger.Error("carrier reported delivery error", "sid", cb.MessageSID, "to", cb.To, "error_code", cb.ErrorCode)
	}

	if s.seenBefore(cb.MessageSID, cb.MessageStatus) {
		logger.Info("duplicate status callback, skipping", "sid", cb.MessageSID, "status", cb.MessageStatus)
		return nil
	}

	record, err := s.resolveRecord(ctx, cb)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryRecordNotFound) {
			logger.Warn("status callback for unknown delivery", "sid", cb.MessageSID, "to", cb.To, "status", cb.MessageStatus)
			return nil
		}
		return err
	}

	applied, err := s.deliveries.Transition(ctx, record.AlertID, record.Phone, next, cb.MessageSID)
	if err != nil {
		return err
	}
	if !applied {
		// Late or out-of-order callback against a terminal state
		logger.Info("status callback did not advance delivery state",
			"sid", cb.MessageSID, "status", cb.MessageStatus, "current", record.Status)
		return nil
	}

	logger.Info("delivery status updated",
		"alert_id", record.AlertID, "phone", record.Phone, "status", next, "sid", cb.MessageSID)
	return nil
}

// resolveRecord finds the delivery record a callback refers to. The SID is
// authoritative, but a callback can race ahead of the engine writing the SID,
// so fall back to the newest open record for the recipient.
func (s *DeliveryService) resolveRecord(ctx context.Context, cb *StatusCallback) (*model.DeliveryRecord, error) {
	if cb.MessageSID != "" {
		record, err := s.deliveries.FindByCarrierSID(ctx, cb.MessageSID)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, repository.ErrDeliveryRecordNotFound) {
			return nil, err
		}
	}
	if cb.To == "" {
		return nil, repository.ErrDeliveryRecordNotFound
	}
	phone, err := model.NormalizePhone(cb.To)
	if err != nil {
		return nil, repository.ErrDeliveryRecordNotFound
	}
	return s.deliveries.FindLatestOpenByPhone(ctx, phone)
}

// seenBefore claims the (sid, status) pair in Redis. A failed claim means a
// duplicate; Redis being down means we process anyway and let the state
// machine no-op the duplicate.
func (s *DeliveryService) seenBefore(sid, status string) bool {
	if s.dedup == nil || sid == "" {
		return false
	}
	acquired, err := s.dedup.SetNX("callback:"+sid+":"+status, []byte("1"), callbackDedupTTL)
	if err != nil {
		logger.Warn("callback dedup check failed", "sid", sid, "error", err)
		return false
	}
	return !acquired
}

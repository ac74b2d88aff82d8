package repository

import (
	"context"
	"errors"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrDeliveryRecordNotFound = errors.New("delivery record not found")
)

type DeliveryRepository struct {
	*pg.DB
}

func NewDeliveryRepository(db *pg.DB) *DeliveryRepository {
	return &DeliveryRepository{
		db,
	}
}

// CreatePending inserts one pending record per recipient before any carrier
// call is made, so a crash mid-broadcast leaves an auditable partial state.
func (r *DeliveryRepository) CreatePending(ctx context.Context, alertID int64, phones []string) error {
	if len(phones) == 0 {
		return nil
	}

	entities := make([]*DeliveryRecordEntity, len(phones))
	for i, phone := range phones {
		entities[i] = &DeliveryRecordEntity{
			AlertID: alertID,
			Phone:   phone,
			Status:  string(model.DeliveryPending),
		}
	}

	return r.Write(ctx).WithContext(ctx).Create(&entities).Error
}

// Transition applies one status change as a conditional update: the row is
// only touched while its current status is one the incoming status may
// lawfully replace. A write racing against an already-delivered record is a
// no-op, never a downgrade. Returns whether the transition was applied.
func (r *DeliveryRepository) Transition(ctx context.Context, alertID int64, phone string, next model.DeliveryStatus, carrierSID string) (bool, error) {
	priors := model.PriorStates(next)
	if len(priors) == 0 {
		return false, nil
	}

	updates := map[string]interface{}{"status": string(next)}
	if carrierSID != "" {
		updates["carrier_sid"] = carrierSID
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&DeliveryRecordEntity{}).
		Where("alert_id = ? AND phone = ?", alertID, phone).
		Where("status IN ?", statusStrings(priors)).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Nothing updated: either the record is already terminal (legitimate
	// no-op) or it never existed.
	var entity DeliveryRecordEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("alert_id = ? AND phone = ?", alertID, phone).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrDeliveryRecordNotFound
		}
		return false, err
	}
	return false, nil
}

// FindByCarrierSID resolves a carrier status callback to its record.
func (r *DeliveryRepository) FindByCarrierSID(ctx context.Context, sid string) (*model.DeliveryRecord, error) {
	var entity DeliveryRecordEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("carrier_sid = ?", sid).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryRecordNotFound
		}
		return nil, err
	}
	return toDeliveryRecordModel(&entity), nil
}

// FindLatestOpenByPhone returns the newest non-terminal record for a phone.
// Fallback for callbacks that arrive before the engine has written the SID.
func (r *DeliveryRepository) FindLatestOpenByPhone(ctx context.Context, phone string) (*model.DeliveryRecord, error) {
	var entity DeliveryRecordEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("phone = ?", phone).
		Where("status IN ?", []string{string(model.DeliveryPending), string(model.DeliverySent)}).
		Order("id DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryRecordNotFound
		}
		return nil, err
	}
	return toDeliveryRecordModel(&entity), nil
}

// ListByAlert returns every record for one broadcast.
func (r *DeliveryRepository) ListByAlert(ctx context.Context, alertID int64) ([]*model.DeliveryRecord, error) {
	var entities []*DeliveryRecordEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("alert_id = ?", alertID).
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toDeliveryRecordModels(entities), nil
}

func statusStrings(statuses []model.DeliveryStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

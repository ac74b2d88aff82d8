package repository

import (
	"context"
	"errors"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

type SubscriberRepository struct {
	*pg.DB
}

func NewSubscriberRepository(db *pg.DB) *SubscriberRepository {
	return &SubscriberRepository{
		db,
	}
}

// UpsertActive creates the subscriber as active, or reactivates it if the
// phone already exists. Idempotent: upserting an already-active subscriber
// is a no-op success, so re-subscribing never creates a duplicate row.
func (r *SubscriberRepository) UpsertActive(ctx context.Context, phone string) (*model.Subscriber, error) {
	entity := &SubscriberEntity{
		Phone:  phone,
		Status: string(model.SubscriberActive),
	}

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"status": string(model.SubscriberActive)}),
		}).
		Create(entity).Error
	if err != nil {
		return nil, err
	}

	// ON CONFLICT DO UPDATE does not refill the struct on every driver, so
	// read the row back to return the durable state.
	var stored SubscriberEntity
	if err := r.Write(ctx).WithContext(ctx).Where("phone = ?", phone).First(&stored).Error; err != nil {
		return nil, err
	}

	return toSubscriberModel(&stored), nil
}

// Deactivate flips the subscriber to inactive. The row is kept for the
// audit trail. Deactivating an unknown phone is reported, not invented.
func (r *SubscriberRepository) Deactivate(ctx context.Context, phone string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&SubscriberEntity{}).
		Where("phone = ?", phone).
		Update("status", string(model.SubscriberInactive))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

// ListActive returns the current recipient snapshot, newest first.
func (r *SubscriberRepository) ListActive(ctx context.Context) ([]*model.Subscriber, error) {
	var entities []*SubscriberEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("status = ?", string(model.SubscriberActive)).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toSubscriberModels(entities), nil
}

func (r *SubscriberRepository) IsActive(ctx context.Context, phone string) (bool, error) {
	var entity SubscriberEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("phone = ?", phone).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return entity.Status == string(model.SubscriberActive), nil
}

package repository

import (
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
)

type SubscriberEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Phone     string    `db:"phone"      gorm:"column:phone;not null;uniqueIndex"`
	Status    string    `db:"status"     gorm:"column:status;not null;default:active"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (SubscriberEntity) TableName() string {
	return "subscribers"
}

func toSubscriberEntity(m *model.Subscriber) *SubscriberEntity {
	if m == nil {
		return nil
	}
	return &SubscriberEntity{
		ID:        m.ID,
		Phone:     m.Phone,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func toSubscriberModel(e *SubscriberEntity) *model.Subscriber {
	if e == nil {
		return nil
	}
	return &model.Subscriber{
		ID:        e.ID,
		Phone:     e.Phone,
		Status:    model.SubscriberStatus(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

func toSubscriberModels(entities []*SubscriberEntity) []*model.Subscriber {
	if entities == nil {
		return nil
	}
	models := make([]*model.Subscriber, len(entities))
	for i, e := range entities {
		models[i] = toSubscriberModel(e)
	}
	return models
}

package repository

import (
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
)

type AlertEntity struct {
	ID              int64                   `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Body            string                  `db:"body"       gorm:"column:body;not null"`
	CreatedAt       time.Time               `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	DeliveryRecords []*DeliveryRecordEntity `gorm:"foreignKey:AlertID"`
}

func (AlertEntity) TableName() string {
	return "alerts"
}

func toAlertEntity(m *model.Alert) *AlertEntity {
	if m == nil {
		return nil
	}
	return &AlertEntity{
		ID:        m.ID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func toAlertModel(e *AlertEntity) *model.Alert {
	if e == nil {
		return nil
	}
	return &model.Alert{
		ID:        e.ID,
		Body:      e.Body,
		CreatedAt: e.CreatedAt,
	}
}

// alertWithCountsEntity is the scan target for the aggregate dashboard query.
type alertWithCountsEntity struct {
	ID              int64     `gorm:"column:id"`
	Body            string    `gorm:"column:body"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	TotalRecipients int64     `gorm:"column:total_recipients"`
	Sent            int64     `gorm:"column:sent"`
	Delivered       int64     `gorm:"column:delivered"`
	Failed          int64     `gorm:"column:failed"`
}

func toAlertWithCountsModels(entities []*alertWithCountsEntity) []*model.AlertWithDeliveryCounts {
	if entities == nil {
		return nil
	}
	models := make([]*model.AlertWithDeliveryCounts, len(entities))
	for i, e := range entities {
		models[i] = &model.AlertWithDeliveryCounts{
			ID:              e.ID,
			Body:            e.Body,
			CreatedAt:       e.CreatedAt,
			TotalRecipients: e.TotalRecipients,
			Sent:            e.Sent,
			Delivered:       e.Delivered,
			Failed:          e.Failed,
		}
	}
	return models
}

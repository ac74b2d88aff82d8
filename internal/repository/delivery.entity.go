package repository

import (
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
)

type DeliveryRecordEntity struct {
	ID         int64  `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	AlertID    int64  `db:"alert_id"    gorm:"column:alert_id;not null;index"`
	Phone      string `db:"phone"       gorm:"column:phone;not null;index"`
	Status     string `db:"status"      gorm:"column:status;not null;index"`
	CarrierSID string `db:"carrier_sid" gorm:"column:carrier_sid;index"`
}

func (DeliveryRecordEntity) TableName() string {
	return "delivery_records"
}

func toDeliveryRecordEntity(m *model.DeliveryRecord) *DeliveryRecordEntity {
	if m == nil {
		return nil
	}
	return &DeliveryRecordEntity{
		ID:         m.ID,
		AlertID:    m.AlertID,
		Phone:      m.Phone,
		Status:     string(m.Status),
		CarrierSID: m.CarrierSID,
	}
}

func toDeliveryRecordModel(e *DeliveryRecordEntity) *model.DeliveryRecord {
	if e == nil {
		return nil
	}
	return &model.DeliveryRecord{
		ID:         e.ID,
		AlertID:    e.AlertID,
		Phone:      e.Phone,
		Status:     model.DeliveryStatus(e.Status),
		CarrierSID: e.CarrierSID,
	}
}

func toDeliveryRecordModels(entities []*DeliveryRecordEntity) []*model.DeliveryRecord {
	if entities == nil {
		return nil
	}
	models := make([]*model.DeliveryRecord, len(entities))
	for i, e := range entities {
		models[i] = toDeliveryRecordModel(e)
	}
	return models
}

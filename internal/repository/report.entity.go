package repository

import (
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
)

type ReportEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Phone     string    `db:"phone"      gorm:"column:phone;not null;index"`
	Issue     string    `db:"issue"      gorm:"column:issue;not null"`
	Status    string    `db:"status"     gorm:"column:status;not null;default:pending;index"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ReportEntity) TableName() string {
	return "reports"
}

func toReportEntity(m *model.Report) *ReportEntity {
	if m == nil {
		return nil
	}
	return &ReportEntity{
		ID:        m.ID,
		Phone:     m.Phone,
		Issue:     m.Issue,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func toReportModel(e *ReportEntity) *model.Report {
	if e == nil {
		return nil
	}
	return &model.Report{
		ID:        e.ID,
		Phone:     e.Phone,
		Issue:     e.Issue,
		Status:    model.ReportStatus(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

func toReportModels(entities []*ReportEntity) []*model.Report {
	if entities == nil {
		return nil
	}
	models := make([]*model.Report, len(entities))
	for i, e := range entities {
		models[i] = toReportModel(e)
	}
	return models
}

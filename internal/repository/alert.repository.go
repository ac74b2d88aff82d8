package repository

import (
	"context"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
)

type AlertRepository struct {
	*pg.DB
}

func NewAlertRepository(db *pg.DB) *AlertRepository {
	return &AlertRepository{
		db,
	}
}

func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	entity := toAlertEntity(alert)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toAlertModel(entity), nil
}

// ListWithDeliveryCounts returns alerts newest first with aggregate delivery
// counters, the view the admin dashboard renders.
func (r *AlertRepository) ListWithDeliveryCounts(ctx context.Context) ([]*model.AlertWithDeliveryCounts, error) {
	var entities []*alertWithCountsEntity

	err := r.Read(ctx).WithContext(ctx).
		Table("alerts AS a").
		Select(`
            a.id         AS id,
            a.body       AS body,
            a.created_at AS created_at,
            COUNT(dr.id)                                               AS total_recipients,
            SUM(CASE WHEN dr.status = 'sent'      THEN 1 ELSE 0 END)   AS sent,
            SUM(CASE WHEN dr.status = 'delivered' THEN 1 ELSE 0 END)   AS delivered,
            SUM(CASE WHEN dr.status = 'failed'    THEN 1 ELSE 0 END)   AS failed
        `).
		Joins("LEFT JOIN delivery_records AS dr ON dr.alert_id = a.id").
		Group("a.id, a.body, a.created_at").
		Order("a.created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}

	return toAlertWithCountsModels(entities), nil
}

package repository

import (
	"context"
	"errors"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportResolved = errors.New("report already resolved")
)

type ReportRepository struct {
	*pg.DB
}

func NewReportRepository(db *pg.DB) *ReportRepository {
	return &ReportRepository{
		db,
	}
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	entity := toReportEntity(report)
	if entity.Status == "" {
		entity.Status = string(model.ReportPending)
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toReportModel(entity), nil
}

func (r *ReportRepository) Get(ctx context.Context, id int64) (*model.Report, error) {
	var entity ReportEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return toReportModel(&entity), nil
}

// List returns reports newest first, optionally filtered by status.
func (r *ReportRepository) List(ctx context.Context, status *model.ReportStatus) ([]*model.Report, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ReportEntity{})
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var entities []*ReportEntity
	if err := q.Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toReportModels(entities), nil
}

// Resolve moves a pending report to approved or dismissed. Conditional on
// the current status so a resolved report can never be resolved again.
func (r *ReportRepository) Resolve(ctx context.Context, id int64, next model.ReportStatus) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ReportEntity{}).
		Where("id = ? AND status = ?", id, string(model.ReportPending)).
		Update("status", string(next))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var entity ReportEntity
	err := r.Read(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	return ErrReportResolved
}

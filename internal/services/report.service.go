package services

import (
	"context"
	"errors"
	"strings"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
)

var ErrNotSubscribed = errors.New("phone is not an active subscriber")

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) (*model.Report, error)
	Get(ctx context.Context, id int64) (*model.Report, error)
	List(ctx context.Context, status *model.ReportStatus) ([]*model.Report, error)
	Resolve(ctx context.Context, id int64, next model.ReportStatus) error
}

type SubscriberChecker interface {
	IsActive(ctx context.Context, phone string) (bool, error)
}

type Broadcaster interface {
	Broadcast(ctx context.Context, body string) (*model.BroadcastResult, error)
}

// ReportService owns the resident issue queue: verified subscribers file
// reports, admins approve them into broadcasts or dismiss them.
type ReportService struct {
	reports     ReportRepository
	subscribers SubscriberChecker
	broadcaster Broadcaster
}

func NewReportService(reports ReportRepository, subscribers SubscriberChecker, broadcaster Broadcaster) *ReportService {
	return &ReportService{
		reports:     reports,
		subscribers: subscribers,
		broadcaster: broadcaster,
	}
}

// Create files a report for rawPhone. Only active subscribers may file, an
// unknown or opted-out number gets ErrNotSubscribed and no row.
func (s *ReportService) Create(ctx context.Context, rawPhone, issue string) (*model.Report, error) {
	phone, err := model.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	issue = strings.TrimSpace(issue)
	if issue == "" {
		return nil, model.ErrEmptyIssue
	}

	active, err := s.subscribers.IsActive(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrNotSubscribed
	}

	report, err := s.reports.Create(ctx, &model.Report{Phone: phone, Issue: issue})
	if err != nil {
		return nil, err
	}
	logger.Info("report filed", "report_id", report.ID, "phone", phone)
	return report, nil
}

func (s *ReportService) Get(ctx context.Context, id int64) (*model.Report, error) {
	return s.reports.Get(ctx, id)
}

func (s *ReportService) List(ctx context.Context, status *model.ReportStatus) ([]*model.Report, error) {
	return s.reports.List(ctx, status)
}

// Approve turns a pending report into a broadcast, then marks it approved.
// If the broadcast fails the report stays pending so the admin can retry.
func (s *ReportService) Approve(ctx context.Context, id int64) (*model.BroadcastResult, error) {
	report, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status != model.ReportPending {
		return nil, repository.ErrReportResolved
	}

	result, err := s.broadcaster.Broadcast(ctx, report.Issue)
	if err != nil {
		return nil, err
	}

	if err := s.reports.Resolve(ctx, id, model.ReportApproved); err != nil {
		// The broadcast went out; surface the inconsistency rather than hide it
		logger.Error("broadcast sent but report not marked approved", "report_id", id, "error", err)
		return nil, err
	}

	logger.Info("report approved and broadcast", "report_id", id, "alert_id", result.AlertID)
	return result, nil
}

// Dismiss marks a pending report dismissed without broadcasting.
func (s *ReportService) Dismiss(ctx context.Context, id int64) error {
	if err := s.reports.Resolve(ctx, id, model.ReportDismissed); err != nil {
		return err
	}
	logger.Info("report dismissed", "report_id", id)
	return nil
}

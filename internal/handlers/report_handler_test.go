package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, rawPhone, issue string) (*model.Report, error) {
	args := m.Called(ctx, rawPhone, issue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, status *model.ReportStatus) ([]*model.Report, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Report), args.Error(1)
}

func (m *MockReportService) Approve(ctx context.Context, id int64) (*model.BroadcastResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BroadcastResult), args.Error(1)
}

func (m *MockReportService) Dismiss(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestReportHandler_CreateReport(t *testing.T) {
	t.Run("files a report", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Create", mock.Anything, "(555) 123-4567", "Broken gate latch").
			Return(&model.Report{ID: 7, Phone: "+15551234567", Issue: "Broken gate latch", Status: model.ReportPending}, nil)

		body, _ := json.Marshal(createReportRequest{Phone: "(555) 123-4567", Issue: "Broken gate latch"})
		ctx := setupTestContext("POST", "/api/report", body)
		handler.CreateReport(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var resp model.Report
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.Equal(t, int64(7), resp.ID)
		assert.Equal(t, model.ReportPending, resp.Status)
	})

	t.Run("rejects non-subscribers", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Create", mock.Anything, "+15550000000", "issue").
			Return(nil, services.ErrNotSubscribed)

		body, _ := json.Marshal(createReportRequest{Phone: "+15550000000", Issue: "issue"})
		ctx := setupTestContext("POST", "/api/report", body)
		handler.CreateReport(ctx)

		assert.Equal(t, 403, ctx.Response.StatusCode())
	})

	t.Run("rejects empty issue", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Create", mock.Anything, "+15551234567", "").
			Return(nil, model.ErrEmptyIssue)

		body, _ := json.Marshal(createReportRequest{Phone: "+15551234567"})
		ctx := setupTestContext("POST", "/api/report", body)
		handler.CreateReport(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Create", mock.Anything, "abc", "issue").
			Return(nil, model.ErrInvalidPhone)

		body, _ := json.Marshal(createReportRequest{Phone: "abc", Issue: "issue"})
		ctx := setupTestContext("POST", "/api/report", body)
		handler.CreateReport(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestReportHandler_ListReports(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		pending := model.ReportPending
		svc.On("List", mock.Anything, &pending).Return([]*model.Report{
			{ID: 1, Phone: "+15551234567", Issue: "Loud noise", Status: model.ReportPending},
		}, nil)

		ctx := setupTestContext("GET", "/reports?status=pending", nil)
		handler.ListReports(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp reportsResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Len(t, resp.Reports, 1)
		assert.Equal(t, "Loud noise", resp.Reports[0].Issue)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		ctx := setupTestContext("GET", "/reports?status=bogus", nil)
		handler.ListReports(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("no filter lists everything", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("List", mock.Anything, (*model.ReportStatus)(nil)).Return([]*model.Report{}, nil)

		ctx := setupTestContext("GET", "/reports", nil)
		handler.ListReports(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestReportHandler_ApproveReport(t *testing.T) {
	t.Run("approves and returns broadcast outcome", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Approve", mock.Anything, int64(5)).Return(&model.BroadcastResult{
			AlertID: 9, TotalRecipients: 1, Sent: 1,
		}, nil)

		ctx := setupTestContext("POST", "/reports/5/approve", nil)
		ctx.SetUserValue("id", "5")
		handler.ApproveReport(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var resp approveResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Broadcast)
		assert.Equal(t, int64(9), resp.Broadcast.AlertID)
	})

	t.Run("unknown report", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Approve", mock.Anything, int64(99)).Return(nil, repository.ErrReportNotFound)

		ctx := setupTestContext("POST", "/reports/99/approve", nil)
		ctx.SetUserValue("id", "99")
		handler.ApproveReport(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("already resolved", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Approve", mock.Anything, int64(5)).Return(nil, repository.ErrReportResolved)

		ctx := setupTestContext("POST", "/reports/5/approve", nil)
		ctx.SetUserValue("id", "5")
		handler.ApproveReport(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("non-numeric id", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		ctx := setupTestContext("POST", "/reports/abc/approve", nil)
		ctx.SetUserValue("id", "abc")
		handler.ApproveReport(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
	})
}

func TestReportHandler_DismissReport(t *testing.T) {
	t.Run("dismisses", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Dismiss", mock.Anything, int64(3)).Return(nil)

		ctx := setupTestContext("POST", "/reports/3/dismiss", nil)
		ctx.SetUserValue("id", "3")
		handler.DismissReport(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"success":true`)
	})

	t.Run("already resolved", func(t *testing.T) {
		svc := new(MockReportService)
		handler := NewReportHandler(svc)

		svc.On("Dismiss", mock.Anything, int64(3)).Return(repository.ErrReportResolved)

		ctx := setupTestContext("POST", "/reports/3/dismiss", nil)
		ctx.SetUserValue("id", "3")
		handler.DismissReport(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})
}

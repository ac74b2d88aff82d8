package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/services"
	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
)

type ReportService interface {
	Create(ctx context.Context, rawPhone, issue string) (*model.Report, error)
	List(ctx context.Context, status *model.ReportStatus) ([]*model.Report, error)
	Approve(ctx context.Context, id int64) (*model.BroadcastResult, error)
	Dismiss(ctx context.Context, id int64) error
}

type ReportHandler struct {
	svc ReportService
}

// RegisterReportRoutes wires the report queue. Filing and listing are open,
// approve and dismiss mutate the queue and require the admin key.
func RegisterReportRoutes(r *router.Router, h *ReportHandler, adminKey string) {
	r.GET("/reports", h.ListReports)
	r.POST("/api/report", h.CreateReport)
	r.POST("/reports/{id}/approve", AdminKey(adminKey, h.ApproveReport))
	r.POST("/reports/{id}/dismiss", AdminKey(adminKey, h.DismissReport))
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type createReportRequest struct {
	Phone string `json:"phone"`
	Issue string `json:"issue"`
}

type reportsResponse struct {
	Reports []*model.Report `json:"reports"`
}

type approveResponse struct {
	Success   bool                   `json:"success"`
	Broadcast *model.BroadcastResult `json:"broadcast"`
}

func (h *ReportHandler) ListReports(ctx *xhttp.RequestCtx) {
	var status *model.ReportStatus
	switch s := model.ReportStatus(query(ctx, "status")); s {
	case "":
	case model.ReportPending, model.ReportApproved, model.ReportDismissed:
		status = &s
	default:
		writeError(ctx, 400, "Unknown report status")
		return
	}

	reports, err := h.svc.List(ctx, status)
	if err != nil {
		writeError(ctx, 500, "Failed to fetch reports")
		return
	}
	if reports == nil {
		reports = []*model.Report{}
	}
	writeJSON(ctx, 200, reportsResponse{Reports: reports})
}

// CreateReport is the web counterpart of the REPORT keyword. The same
// subscriber check applies, an unknown number cannot file.
func (h *ReportHandler) CreateReport(ctx *xhttp.RequestCtx) {
	var req createReportRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "Phone and issue are required.")
		return
	}

	report, err := h.svc.Create(ctx, req.Phone, req.Issue)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidPhone):
			writeError(ctx, 400, "A valid phone number is required.")
		case errors.Is(err, model.ErrEmptyIssue):
			writeError(ctx, 400, "Please describe the issue.")
		case errors.Is(err, services.ErrNotSubscribed):
			writeError(ctx, 403, "Please subscribe before filing a report.")
		default:
			writeError(ctx, 500, "Failed to file report.")
		}
		return
	}

	writeJSON(ctx, 201, report)
}

func (h *ReportHandler) ApproveReport(ctx *xhttp.RequestCtx) {
	id, err := paramInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "Invalid report id")
		return
	}

	result, err := h.svc.Approve(ctx, id)
	if err != nil {
		writeReportError(ctx, err, "Failed to approve report.")
		return
	}

	writeJSON(ctx, 200, approveResponse{Success: true, Broadcast: result})
}

func (h *ReportHandler) DismissReport(ctx *xhttp.RequestCtx) {
	id, err := paramInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "Invalid report id")
		return
	}

	if err := h.svc.Dismiss(ctx, id); err != nil {
		writeReportError(ctx, err, "Failed to dismiss report.")
		return
	}

	writeJSON(ctx, 200, map[string]bool{"success": true})
}

func writeReportError(ctx *xhttp.RequestCtx, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrReportNotFound):
		writeError(ctx, 404, "Report not found")
	case errors.Is(err, repository.ErrReportResolved):
		writeError(ctx, 409, "Report already resolved")
	case errors.Is(err, services.ErrNoSubscribers):
		writeError(ctx, 409, "No subscribers available.")
	default:
		writeError(ctx, 500, fallback)
	}
}

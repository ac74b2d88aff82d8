package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/services"
	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
)

type BroadcastService interface {
	Broadcast(ctx context.Context, body string) (*model.BroadcastResult, error)
	ListAlerts(ctx context.Context) ([]*model.AlertWithDeliveryCounts, error)
}

type BroadcastHandler struct {
	svc BroadcastService
}

// RegisterBroadcastRoutes wires the admin broadcast endpoints. POST /broadcast
// sits behind the admin key, the alert history is readable without it.
func RegisterBroadcastRoutes(r *router.Router, h *BroadcastHandler, adminKey string) {
	r.POST("/broadcast", AdminKey(adminKey, h.Broadcast))
	r.GET("/alerts", h.ListAlerts)
}

func NewBroadcastHandler(svc BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{svc: svc}
}

type broadcastRequest struct {
	Message string `json:"message"`
}

type broadcastResponse struct {
	Success         bool                    `json:"success"`
	MessageID       int64                   `json:"messageId,omitempty"`
	TotalRecipients int                     `json:"totalRecipients"`
	Sent            int                     `json:"sent"`
	Failed          int                     `json:"failed"`
	Results         []model.RecipientResult `json:"results"`
}

type alertsResponse struct {
	Messages []*model.AlertWithDeliveryCounts `json:"messages"`
}

func (h *BroadcastHandler) Broadcast(ctx *xhttp.RequestCtx) {
	var req broadcastRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "Message is required.")
		return
	}

	result, err := h.svc.Broadcast(ctx, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmptyBody):
			writeError(ctx, 400, "Message is required.")
		case errors.Is(err, model.ErrBodyTooLong):
			writeError(ctx, 400, "Message is too long (250 characters max).")
		case errors.Is(err, services.ErrNoSubscribers):
			writeJSON(ctx, 200, map[string]any{"success": false, "message": "No subscribers available."})
		default:
			writeError(ctx, 500, "Failed to send broadcast.")
		}
		return
	}

	writeJSON(ctx, 200, broadcastResponse{
		Success:         true,
		MessageID:       result.AlertID,
		TotalRecipients: result.TotalRecipients,
		Sent:            result.Sent,
		Failed:          result.Failed,
		Results:         result.Results,
	})
}

func (h *BroadcastHandler) ListAlerts(ctx *xhttp.RequestCtx) {
	alerts, err := h.svc.ListAlerts(ctx)
	if err != nil {
		writeError(ctx, 500, "Failed to fetch alerts")
		return
	}
	if alerts == nil {
		alerts = []*model.AlertWithDeliveryCounts{}
	}
	writeJSON(ctx, 200, alertsResponse{Messages: alerts})
}

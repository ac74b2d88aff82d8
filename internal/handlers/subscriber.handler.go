package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
)

type SubscriberService interface {
	SubscribeFromWeb(ctx context.Context, rawPhone string) (*model.Subscriber, error)
	ListActive(ctx context.Context) ([]*model.Subscriber, error)
}

type SubscriberHandler struct {
	svc SubscriberService
}

func RegisterSubscriberRoutes(r *router.Router, h *SubscriberHandler) {
	r.GET("/subscribers", h.ListSubscribers)
	r.POST("/api/subscribe", h.Subscribe)
}

func NewSubscriberHandler(svc SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{svc: svc}
}

type subscribeRequest struct {
	Phone string `json:"phone"`
}

type subscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type subscribersResponse struct {
	Subscribers []*model.Subscriber `json:"subscribers"`
}

func (h *SubscriberHandler) ListSubscribers(ctx *xhttp.RequestCtx) {
	subs, err := h.svc.ListActive(ctx)
	if err != nil {
		writeError(ctx, 500, "Failed to fetch subscribers")
		return
	}
	if subs == nil {
		subs = []*model.Subscriber{}
	}
	writeJSON(ctx, 200, subscribersResponse{Subscribers: subs})
}

// Subscribe is the public web opt-in endpoint.
func (h *SubscriberHandler) Subscribe(ctx *xhttp.RequestCtx) {
	var req subscribeRequest
	if err := readJSON(ctx, &req); err != nil {
		writeJSON(ctx, 400, subscribeResponse{Success: false, Message: "Phone number is required."})
		return
	}

	if _, err := h.svc.SubscribeFromWeb(ctx, req.Phone); err != nil {
		if errors.Is(err, model.ErrInvalidPhone) {
			writeJSON(ctx, 400, subscribeResponse{Success: false, Message: "Phone number is required."})
			return
		}
		writeJSON(ctx, 500, subscribeResponse{Success: false, Message: "Failed to subscribe. Please try again."})
		return
	}

	writeJSON(ctx, 200, subscribeResponse{Success: true, Message: "You're now subscribed to Curve Community Alerts!"})
}

package handlers

import (
	"github.com/fasthttp/router"
	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
)

type HealthService interface {
	Get() error
}

type HealthHandler struct {
	healthService HealthService
}

func RegisterHealthRoutes(r *router.Router, h *HealthHandler) {
	r.GET("/", h.GetRoot)
	r.GET("/health", h.GetHealth)
}

func NewHealthHandler(healthService HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

func (h *HealthHandler) GetRoot(ctx *xhttp.RequestCtx) {
	ctx.Response.SetBodyString("Curve Community Alerts server is running.")
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.healthService.Get(); err != nil {
		writeError(ctx, 500, "unhealthy")
		return
	}
	ctx.Response.SetBodyString("success")
}

package handlers

import (
	"context"
	"encoding/xml"

	"github.com/fasthttp/router"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/services"
	xhttp "github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/http"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
)

type InboundService interface {
	Handle(ctx context.Context, from, body string) string
}

type DeliveryService interface {
	HandleCallback(ctx context.Context, cb *services.StatusCallback) error
}

// SMSHandler owns the two carrier-facing webhooks: the inbound message hook
// that must answer with TwiML, and the fire-and-forget status callback.
type SMSHandler struct {
	inbound  InboundService
	delivery DeliveryService
}

func RegisterSMSRoutes(r *router.Router, h *SMSHandler) {
	r.POST("/sms", h.InboundSMS)
	r.POST("/sms/status", h.StatusCallback)
}

func NewSMSHandler(inbound InboundService, delivery DeliveryService) *SMSHandler {
	return &SMSHandler{
		inbound:  inbound,
		delivery: delivery,
	}
}

// twimlResponse is the carrier's expected reply markup:
// <Response><Message>...</Message></Response>
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// InboundSMS answers every inbound text with exactly one TwiML reply.
// The interpreter never errors, so this handler cannot return anything but
// a well-formed 200.
func (h *SMSHandler) InboundSMS(ctx *xhttp.RequestCtx) {
	from := form(ctx, "From")
	body := form(ctx, "Body")

	reply := h.inbound.Handle(ctx, from, body)
	writeTwiML(ctx, reply)
}

// StatusCallback feeds the carrier's delivery report into the reconciler.
// Always 200: the carrier retries non-2xx responses, and a replay of the
// same callback buys nothing.
func (h *SMSHandler) StatusCallback(ctx *xhttp.RequestCtx) {
	cb := &services.StatusCallback{
		MessageSID:    form(ctx, "MessageSid"),
		MessageStatus: form(ctx, "MessageStatus"),
		To:            form(ctx, "To"),
		ErrorCode:     form(ctx, "ErrorCode"),
	}

	if err := h.delivery.HandleCallback(ctx, cb); err != nil {
		logger.Error("status callback reconciliation failed", "sid", cb.MessageSID, "error", err)
	}

	ctx.Response.SetStatusCode(200)
}

func writeTwiML(ctx *xhttp.RequestCtx, message string) {
	b, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		// xml.Marshal on a plain string member cannot realistically fail,
		// but the reply contract demands a body no matter what
		b = []byte("<Response><Message>" + ReplyFallback + "</Message></Response>")
	}
	ctx.Response.Header.Set("Content-Type", "text/xml")
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyRaw(append([]byte(xml.Header), b...))
}

// ReplyFallback is only used if TwiML marshalling itself fails.
const ReplyFallback = "There was an error processing your request. Please try again."

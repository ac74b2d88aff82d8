package services

import (
	"context"
	"errors"
	"strings"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/pkg/logger"
)

// Reply texts for the inbound webhook. The carrier renders these verbatim,
// so the wording is part of the external contract.
const (
	ReplyEmpty         = "Message cannot be empty. Reply START to subscribe, REPORT <...>, or STOP."
	ReplySubscribed    = "Curve Community Alerts: You're now subscribed. Reply STOP to opt out, HELP for help."
	ReplyReportAck     = "Thanks, we received your report."
	ReplyReportEmpty   = "Please include details with your report: REPORT <what happened>."
	ReplyNotSubscribed = "Please sign up first: reply START to subscribe, then send your report."
	ReplyUnsubscribed  = "Curve Community Alerts: You've been unsubscribed. Text START to re-subscribe."
	ReplyHelp          = "Curve Community Alerts: Reply STOP to unsubscribe. For emergencies, call 911. For help, contact your building management."
	ReplyUnknown       = "Reply START to subscribe, REPORT <...>, HELP, or STOP."
	ReplyError         = "There was an error processing your request. Please try again."
)

type SubscriberWriter interface {
	Subscribe(ctx context.Context, rawPhone string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, rawPhone string) error
}

type ReportCreator interface {
	Create(ctx context.Context, rawPhone, issue string) (*model.Report, error)
}

// InboundService classifies inbound texts (START/STOP/HELP/REPORT) and
// mutates the directory or report store accordingly. Each message is
// classified on its own, there is no per-sender conversation state.
type InboundService struct {
	subscribers SubscriberWriter
	reports     ReportCreator
}

func NewInboundService(subscribers SubscriberWriter, reports ReportCreator) *InboundService {
	return &InboundService{
		subscribers: subscribers,
		reports:     reports,
	}
}

// Handle returns exactly one reply for every inbound message. Internal
// errors become a generic apology, never a propagated error: the webhook
// must always answer with a well-formed reply.
func (s *InboundService) Handle(ctx context.Context, from, body string) string {
	body = strings.TrimSpace(body)
	command := strings.ToUpper(body)

	switch {
	case body == "":
		return ReplyEmpty

	case command == "START":
		if _, err := s.subscribers.Subscribe(ctx, from); err != nil {
			logger.Error("inbound START failed", "from", from, "error", err)
			return ReplyError
		}
		return ReplySubscribed

	case command == "STOP":
		if err := s.subscribers.Unsubscribe(ctx, from); err != nil {
			// Opt-out is idempotent: an unknown number is already "out"
			if errors.Is(err, repository.ErrSubscriberNotFound) {
				return ReplyUnsubscribed
			}
			logger.Error("inbound STOP failed", "from", from, "error", err)
			return ReplyError
		}
		return ReplyUnsubscribed

	case command == "HELP":
		return ReplyHelp

	case command == "REPORT" || strings.HasPrefix(command, "REPORT "):
		issue := strings.TrimSpace(body[len("REPORT"):])
		if issue == "" {
			return ReplyReportEmpty
		}
		if _, err := s.reports.Create(ctx, from, issue); err != nil {
			if errors.Is(err, ErrNotSubscribed) {
				return ReplyNotSubscribed
			}
			logger.Error("inbound REPORT failed", "from", from, "error", err)
			return ReplyError
		}
		return ReplyReportAck

	default:
		return ReplyUnknown
	}
}

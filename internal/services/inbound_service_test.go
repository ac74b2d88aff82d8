package services

import (
	"context"
	"errors"
	"testing"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/repository"
	"github.com/stretchr/testify/assert"
)

type fakeSubscriberWriter struct {
	subscribed   []string
	unsubscribed []string
	err          error
}

func (f *fakeSubscriberWriter) Subscribe(ctx context.Context, rawPhone string) (*model.Subscriber, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subscribed = append(f.subscribed, rawPhone)
	return &model.Subscriber{Phone: rawPhone, Status: model.SubscriberActive}, nil
}

func (f *fakeSubscriberWriter) Unsubscribe(ctx context.Context, rawPhone string) error {
	if f.err != nil {
		return f.err
	}
	f.unsubscribed = append(f.unsubscribed, rawPhone)
	return nil
}

type fakeReportCreator struct {
	created []model.Report
	err     error
}

func (f *fakeReportCreator) Create(ctx context.Context, rawPhone, issue string) (*model.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := model.Report{Phone: rawPhone, Issue: issue, Status: model.ReportPending}
	f.created = append(f.created, r)
	return &r, nil
}

func TestInboundService_Handle(t *testing.T) {
	ctx := context.Background()
	from := "+15551234567"

	t.Run("START subscribes and confirms", func(t *testing.T) {
		subs := &fakeSubscriberWriter{}
		s := NewInboundService(subs, &fakeReportCreator{})

		reply := s.Handle(ctx, from, "START")
		assert.Equal(t, ReplySubscribed, reply)
		assert.Equal(t, []string{from}, subs.subscribed)
	})

	t.Run("commands are case-insensitive and trimmed", func(t *testing.T) {
		subs := &fakeSubscriberWriter{}
		s := NewInboundService(subs, &fakeReportCreator{})

		assert.Equal(t, ReplySubscribed, s.Handle(ctx, from, "  start  "))
		assert.Equal(t, ReplyUnsubscribed, s.Handle(ctx, from, "Stop"))
		assert.Equal(t, ReplyHelp, s.Handle(ctx, from, "help"))
	})

	t.Run("STOP deactivates", func(t *testing.T) {
		subs := &fakeSubscriberWriter{}
		s := NewInboundService(subs, &fakeReportCreator{})

		reply := s.Handle(ctx, from, "STOP")
		assert.Equal(t, ReplyUnsubscribed, reply)
		assert.Equal(t, []string{from}, subs.unsubscribed)
	})

	t.Run("STOP from unknown number is still confirmed", func(t *testing.T) {
		subs := &fakeSubscriberWriter{err: repository.ErrSubscriberNotFound}
		s := NewInboundService(subs, &fakeReportCreator{})

		assert.Equal(t, ReplyUnsubscribed, s.Handle(ctx, from, "STOP"))
	})

	t.Run("REPORT with detail files a report", func(t *testing.T) {
		reports := &fakeReportCreator{}
		s := NewInboundService(&fakeSubscriberWriter{}, reports)

		reply := s.Handle(ctx, from, "REPORT broken gate on level 2")
		assert.Equal(t, ReplyReportAck, reply)
		if assert.Len(t, reports.created, 1) {
			assert.Equal(t, "broken gate on level 2", reports.created[0].Issue)
		}
	})

	t.Run("REPORT keeps issue casing", func(t *testing.T) {
		reports := &fakeReportCreator{}
		s := NewInboundService(&fakeSubscriberWriter{}, reports)

		s.Handle(ctx, from, "report Broken Gate")
		if assert.Len(t, reports.created, 1) {
			assert.Equal(t, "Broken Gate", reports.created[0].Issue)
		}
	})

	t.Run("REPORT without detail asks for it", func(t *testing.T) {
		reports := &fakeReportCreator{}
		s := NewInboundService(&fakeSubscriberWriter{}, reports)

		assert.Equal(t, ReplyReportEmpty, s.Handle(ctx, from, "REPORT"))
		assert.Equal(t, ReplyReportEmpty, s.Handle(ctx, from, "REPORT   "))
		assert.Empty(t, reports.created)
	})

	t.Run("REPORT from unregistered number is rejected", func(t *testing.T) {
		reports := &fakeReportCreator{err: ErrNotSubscribed}
		s := NewInboundService(&fakeSubscriberWriter{}, reports)

		reply := s.Handle(ctx, from, "REPORT water leak")
		assert.Equal(t, ReplyNotSubscribed, reply)
	})

	t.Run("empty body", func(t *testing.T) {
		s := NewInboundService(&fakeSubscriberWriter{}, &fakeReportCreator{})
		assert.Equal(t, ReplyEmpty, s.Handle(ctx, from, "   "))
	})

	t.Run("unknown command", func(t *testing.T) {
		s := NewInboundService(&fakeSubscriberWriter{}, &fakeReportCreator{})
		assert.Equal(t, ReplyUnknown, s.Handle(ctx, from, "SUBSCRIBE ME"))
	})

	t.Run("internal error becomes apology", func(t *testing.T) {
		subs := &fakeSubscriberWriter{err: errors.New("db down")}
		s := NewInboundService(subs, &fakeReportCreator{})

		assert.Equal(t, ReplyError, s.Handle(ctx, from, "START"))
		assert.Equal(t, ReplyError, s.Handle(ctx, from, "STOP"))
	})
}

package fixtures

import (
	"strings"
	"time"

	"github.com/MarcusPiperAllen/curve-sms-safety-project/internal/model"
)

var (
	ValidPhoneNumbers = []string{
		"+15551234567",
		"5551234567",
		"(555) 123-4567",
		"555-123-4567",
		"15551234567",
	}

	InvalidPhoneNumbers = []string{
		"",
		"123",
		"not a phone",
		"+",
		"555-12ab",
	}

	ValidAlertBodies = []string{
		"Pool closed until Friday",
		"Water shut-off Tuesday 9am-12pm, building B",
		"Package thief reported near mailroom, lock your boxes",
	}

	InvalidAlertBodies = []string{
		"",
		"   ",
		"\n\t",
		strings.Repeat("x", model.MaxAlertBodyLen+1),
	}
)

func NewTestSubscriber(phone string) *model.Subscriber {
	return &model.Subscriber{
		Phone:     phone,
		Status:    model.SubscriberActive,
		CreatedAt: time.Now(),
	}
}

func NewTestAlert(body string) *model.Alert {
	return &model.Alert{
		Body:      body,
		CreatedAt: time.Now(),
	}
}

func NewTestReport(phone, issue string) *model.Report {
	return &model.Report{
		Phone:     phone,
		Issue:     issue,
		Status:    model.ReportPending,
		CreatedAt: time.Now(),
	}
}

func NewTestDeliveryRecord(alertID int64, phone string, status model.DeliveryStatus) *model.DeliveryRecord {
	return &model.DeliveryRecord{
		AlertID: alertID,
		Phone:   phone,
		Status:  status,
	}
}

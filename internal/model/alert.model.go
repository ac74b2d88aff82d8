package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxAlertBodyLen is the maximum broadcast body length, enforced before
// anything is persisted.
const MaxAlertBodyLen = 250

var (
	ErrEmptyBody   = errors.New("alert body cannot be empty")
	ErrBodyTooLong = errors.New("alert body exceeds maximum length")
)

// Alert is a single broadcast message. Immutable once created.
type Alert struct {
	ID        int64     `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Body      string    `json:"body"       db:"body"       gorm:"column:body;not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Alert) TableName() string { return "alerts" }

// ValidateAlertBody trims the body and checks the length limit. Returns the
// trimmed body so callers persist exactly what was validated.
func ValidateAlertBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxAlertBodyLen {
		return "", ErrBodyTooLong
	}
	return body, nil
}

// AlertWithDeliveryCounts is the admin dashboard view of a broadcast:
// the alert plus aggregate delivery counters from its delivery records.
type AlertWithDeliveryCounts struct {
	ID              int64     `json:"id"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
	TotalRecipients int64     `json:"total_recipients"`
	Sent            int64     `json:"sent"`
	Delivered       int64     `json:"delivered"`
	Failed          int64     `json:"failed"`
}

// RecipientResult is the per-recipient outcome of one broadcast attempt.
type RecipientResult struct {
	Phone      string         `json:"phone"`
	Status     DeliveryStatus `json:"status"`
	CarrierSID string         `json:"carrier_sid,omitempty"`
	Retried    bool           `json:"retried,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// BroadcastResult is the aggregate outcome returned to the admin caller.
type BroadcastResult struct {
	AlertID         int64             `json:"alert_id"`
	TotalRecipients int               `json:"total_recipients"`
	Sent            int               `json:"sent"`
	Failed          int               `json:"failed"`
	Results         []RecipientResult `json:"results"`
}

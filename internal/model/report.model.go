package model

import (
	"errors"
	"time"
)

// ReportStatus is the triage state of a resident-submitted issue.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportApproved  ReportStatus = "approved"
	ReportDismissed ReportStatus = "dismissed"
)

var ErrEmptyIssue = errors.New("report issue cannot be empty")

// Report is an issue filed by a verified subscriber, via SMS or the web
// form. Approved and dismissed are terminal.
type Report struct {
	ID        int64        `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Phone     string       `json:"phone"      db:"phone"      gorm:"column:phone;not null;index"`
	Issue     string       `json:"issue"      db:"issue"      gorm:"column:issue;not null"`
	Status    ReportStatus `json:"status"     db:"status"     gorm:"column:status;not null;default:pending;index"`
	CreatedAt time.Time    `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Report) TableName() string { return "reports" }

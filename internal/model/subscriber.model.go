package model

import "time"

// SubscriberStatus is the opt-in state of a phone number.
type SubscriberStatus string

const (
	SubscriberActive   SubscriberStatus = "active"
	SubscriberInactive SubscriberStatus = "inactive"
)

// Subscriber is a phone number that opted in to community alerts.
// Rows are never hard-deleted; STOP flips the status to inactive so the
// opt-out stays auditable.
type Subscriber struct {
	ID        int64            `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Phone     string           `json:"phone"      db:"phone"      gorm:"column:phone;not null;uniqueIndex"`
	Status    SubscriberStatus `json:"status"     db:"status"     gorm:"column:status;not null;default:active"`
	CreatedAt time.Time        `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Subscriber) TableName() string { return "subscribers" }

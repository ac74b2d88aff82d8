package model

// DeliveryStatus is the lifecycle state of one (alert, recipient) pair.
//
// Two writers mutate it independently and possibly out of order: the
// broadcast engine right after the carrier send returns, and the status
// reconciler when the carrier's asynchronous callback arrives. Every write
// must go through CanTransition/ApplyTransition (or the equivalent
// conditional UPDATE) so a terminal state is never downgraded.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// DeliveryRecord joins "who should have received this alert" with "what
// actually happened". One row per recipient, created in pending state before
// any carrier call is made.
type DeliveryRecord struct {
	ID         int64          `json:"id"          db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	AlertID    int64          `json:"alert_id"    db:"alert_id"    gorm:"column:alert_id;not null;index"`
	Phone      string         `json:"phone"       db:"phone"       gorm:"column:phone;not null;index"`
	Status     DeliveryStatus `json:"status"      db:"status"      gorm:"column:status;not null;index"`
	CarrierSID string         `json:"carrier_sid" db:"carrier_sid" gorm:"column:carrier_sid;index"`
}

func (DeliveryRecord) TableName() string { return "delivery_records" }

// IsTerminal reports whether a status can never be downgraded again.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryFailed
}

// priorStates is the explicit transition table: for each incoming status,
// the set of current states it is allowed to replace.
//
//	current   | incoming  | result
//	pending   | sent      | sent
//	pending   | delivered | delivered
//	pending   | failed    | failed
//	sent      | delivered | delivered
//	sent      | failed    | failed
//	delivered | (any)     | delivered (no-op)
//	failed    | (any)     | failed    (no-op)
var priorStates = map[DeliveryStatus][]DeliveryStatus{
	DeliverySent:      {DeliveryPending},
	DeliveryDelivered: {DeliveryPending, DeliverySent},
	DeliveryFailed:    {DeliveryPending, DeliverySent},
}

// PriorStates returns the current states that incoming may lawfully replace.
// Used by the repository to build the conditional UPDATE's WHERE clause.
func PriorStates(incoming DeliveryStatus) []DeliveryStatus {
	return priorStates[incoming]
}

// CanTransition reports whether incoming may replace current.
func CanTransition(current, incoming DeliveryStatus) bool {
	for _, p := range priorStates[incoming] {
		if p == current {
			return true
		}
	}
	return false
}

// ApplyTransition folds one observed status into the current state. Illegal
// transitions are no-ops, which makes the fold order-insensitive for the
// sent/delivered race: {sent, delivered} ends at delivered either way.
func ApplyTransition(current, incoming DeliveryStatus) DeliveryStatus {
	if CanTransition(current, incoming) {
		return incoming
	}
	return current
}

package notification

import (
	"context"
	"time"
)

// Type represents the type of notification
type Type string

const (
	TypeCorrectionSubmitted     Type = "correction_submitted"
	TypeCorrectionApproved      Type = "correction_approved"
	TypeCorrectionRejected      Type = "correction_rejected"
	TypeOutOfPremisesSubmitted  Type = "out_of_premises_submitted"
	TypeOutOfPremisesApproved   Type = "out_of_premises_approved"
	TypeOutOfPremisesRejected   Type = "out_of_premises_rejected"
	TypeReconciliationCompleted Type = "reconciliation_completed"
)

// Notification is a message about a state change. RecipientID is an
// employee id; an empty RecipientID addresses the operations channel.
type Notification struct {
	Type        Type
	RecipientID string
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// IsOperational reports whether the notification targets operators rather
// than one employee.
func (n Notification) IsOperational() bool {
	return n.RecipientID == ""
}

// Notifier delivers notifications without blocking the caller. Delivery
// failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Sink is one delivery channel used by a Notifier.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

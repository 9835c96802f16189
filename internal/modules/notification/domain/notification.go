package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the domain event a notification was rendered from.
// The set is closed: dispatching an unknown kind fails before anything
// is written.
type Kind string

const (
	KindJobApplication      Kind = "job_application"
	KindApplicationApproved Kind = "application_approved"
	KindApplicationRejected Kind = "application_rejected"
	KindNewMessage          Kind = "new_message"
	KindJobCompleted        Kind = "job_completed"
	KindPaymentReceived     Kind = "payment_received"
	KindSystemAnnouncement  Kind = "system_announcement"
)

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	switch k {
	case KindJobApplication, KindApplicationApproved, KindApplicationRejected,
		KindNewMessage, KindJobCompleted, KindPaymentReceived, KindSystemAnnouncement:
		return true
	}
	return false
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is a single rendered notification row. Title and Message are
// produced once at dispatch time and never re-rendered, so the stored row is
// an audit record of what the recipient was actually shown.
//
// Invariant: ReadAt is non-nil exactly when IsRead is true.
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Recipient uuid.UUID  `json:"recipient" db:"recipient"`
	Sender    *uuid.UUID `json:"sender,omitempty" db:"sender"`
	Kind      Kind       `json:"kind" db:"kind"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	Context   ContextMap `json:"context" db:"context"`
	Priority  Priority   `json:"priority" db:"priority"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`
}

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrUnknownNotificationKind = errors.New("unknown notification kind")
	ErrMissingTemplateField    = errors.New("missing template field")
	ErrSelfNotification        = errors.New("recipient and sender are the same user")
	ErrEmptyRecipient          = errors.New("recipient is required")
)

package domain

import (
	"context"
	"time"
)

// Notification tells a participant that an event they joined changed.
// Created in bulk on edits, mutated only by marking read, never deleted.
// swagger:model Notification
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title,omitempty"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationRepository defines storage for notifications.
type NotificationRepository interface {
	// CreateBatch persists all notifications in one transaction, setting
	// their IDs. Either all are stored or none.
	CreateBatch(ctx context.Context, notifications []*Notification) error
	// ListByRecipient returns the recipient's notifications newest first,
	// capped at limit, with EventTitle resolved.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error)
	// MarkRead marks one notification read. Fails with ErrNotFound when the
	// notification does not exist or belongs to someone else.
	MarkRead(ctx context.Context, id, recipientID string) (*Notification, error)
	// MarkAllRead marks every unread notification of the recipient read and
	// returns how many were updated.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// NotificationService exposes a caller's notification feed.
type NotificationService interface {
	List(ctx context.Context, callerID string) ([]*Notification, error)
	MarkRead(ctx context.Context, callerID, notificationID string) (*Notification, error)
	MarkAllRead(ctx context.Context, callerID string) (int64, error)
}

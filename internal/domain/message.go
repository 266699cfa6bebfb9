package domain

import (
	"context"
	"time"
)

// Message is a wall entry on an event. Messages are immutable once appended;
// there is no edit or delete.
type Message struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageRepository defines append-only storage for wall messages.
type MessageRepository interface {
	// Append inserts the message and returns it with ID and CreatedAt set.
	Append(ctx context.Context, eventID, senderID, text string) (*Message, error)
}

// WallService posts messages to an event's wall. Any authenticated caller may
// post; membership is not required at this layer.
type WallService interface {
	PostMessage(ctx context.Context, eventID, callerID, text string) (*EventDetail, error)
}

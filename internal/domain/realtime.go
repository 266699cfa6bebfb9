package domain

import "context"

// Room names for the two pub/sub channel kinds. Clients viewing an event
// subscribe to its event room; every authenticated client subscribes to its
// own user room.

// EventRoom returns the channel that carries full snapshots of one event.
func EventRoom(eventID string) string { return "event-" + eventID }

// UserRoom returns the channel that carries one user's personal
// notifications.
func UserRoom(userID string) string { return "user-" + userID }

// Broadcaster pushes updates to connected clients. Delivery is at-most-once
// and best effort: implementations log and drop failures instead of
// returning them, since the triggering mutation has already succeeded.
type Broadcaster interface {
	// PublishEventUpdate sends the full snapshot to the event's room.
	PublishEventUpdate(ctx context.Context, event *EventDetail)
	// PublishNotification sends one notification to the recipient's room.
	PublishNotification(ctx context.Context, n *Notification)
}

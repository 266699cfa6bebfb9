package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyClaimed is returned when claiming an item whose claimedBy is
// already set. A claim is a one-way transition; it is never overwritten.
var ErrAlreadyClaimed = errors.New("item already claimed")

// Item is a supply-list entry on an event. ClaimedBy is empty until exactly
// one participant claims it.
type Item struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	ClaimedBy string    `json:"claimed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemRepository defines storage for supply-list items.
type ItemRepository interface {
	Add(ctx context.Context, eventID, name string) (*Item, error)
	Get(ctx context.Context, eventID, itemID string) (*Item, error)
	// Claim sets claimedBy in a single conditional update so that of two
	// concurrent claimants exactly one succeeds. Fails with ErrNotFound when
	// the item is absent and ErrAlreadyClaimed when claimedBy is set.
	Claim(ctx context.Context, eventID, itemID, userID string) error
}

// ItemService enforces who may add and claim supply items.
type ItemService interface {
	// AddItem appends an unclaimed item. Caller must be a participant or the
	// creator.
	AddItem(ctx context.Context, eventID, callerID, name string) (*EventDetail, error)
	ClaimItem(ctx context.Context, eventID, callerID, itemID string) (*EventDetail, error)
}

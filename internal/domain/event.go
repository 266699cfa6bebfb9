package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across event operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooCloseToEdit is returned when a date edit is attempted less than
	// EditLockWindow before the event's current date.
	ErrTooCloseToEdit = errors.New("event date is too close to edit")
)

// EditLockWindow is the period before an event's date during which the date
// can no longer be changed.
const EditLockWindow = 24 * time.Hour

// GenderRestriction limits who may join an event. Enforced at join time only;
// it is never applied retroactively to existing participants.
type GenderRestriction string

const (
	RestrictionMenOnly   GenderRestriction = "men_only"
	RestrictionWomenOnly GenderRestriction = "women_only"
	RestrictionMixed     GenderRestriction = "mixed"
)

// Valid reports whether r is one of the known restriction values.
func (r GenderRestriction) Valid() bool {
	switch r {
	case RestrictionMenOnly, RestrictionWomenOnly, RestrictionMixed:
		return true
	}
	return false
}

// Allows reports whether a user with the given gender may join an event with
// this restriction. An empty or mixed restriction allows everyone.
func (r GenderRestriction) Allows(g Gender) bool {
	switch r {
	case RestrictionMenOnly:
		return g == GenderMan
	case RestrictionWomenOnly:
		return g == GenderWoman
	}
	return true
}

// Event represents a gathering proposed by a user
// swagger:model Event
type Event struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Location          string            `json:"location"`
	Date              time.Time         `json:"date"`
	Cost              int               `json:"cost"`
	Category          string            `json:"category"`
	Subcategory       string            `json:"subcategory"`
	MaxParticipants   int               `json:"max_participants"`
	GenderRestriction GenderRestriction `json:"gender_restriction"`
	CreatorID         string            `json:"creator_id"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the
// repository on create; the creator is inserted as the first participant in
// the same transaction.
func NewEvent(title, description, location string, date time.Time, cost int,
	category, subcategory string, maxParticipants int,
	restriction GenderRestriction, creatorID string, createdAt time.Time) *Event {
	return &Event{
		Title:             title,
		Description:       description,
		Location:          location,
		Date:              date,
		Cost:              cost,
		Category:          category,
		Subcategory:       subcategory,
		MaxParticipants:   maxParticipants,
		GenderRestriction: restriction,
		CreatorID:         creatorID,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

// EventSummary is a list entry: the event plus its creator in display form
// and the current roster size (account + manual participants).
type EventSummary struct {
	Event
	Creator          UserSummary `json:"creator"`
	ParticipantCount int         `json:"participant_count"`
}

// ItemDetail is a supply-list item with its claimer resolved.
type ItemDetail struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	ClaimedBy *UserSummary `json:"claimed_by"`
}

// MessageDetail is a wall message with its sender resolved.
type MessageDetail struct {
	ID        string      `json:"id"`
	Sender    UserSummary `json:"sender"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

// EventDetail is the fully populated event snapshot: the canonical
// externally-consumable form returned by reads and broadcast to the event
// room after every successful mutation.
type EventDetail struct {
	Event
	Creator            UserSummary     `json:"creator"`
	Participants       []UserSummary   `json:"participants"`
	ManualParticipants []string        `json:"manual_participants"`
	Items              []ItemDetail    `json:"items"`
	Messages           []MessageDetail `json:"messages"`
}

// EventFilter narrows the event listing. Gender is the requester's gender;
// when set, only events whose restriction admits that gender are returned.
type EventFilter struct {
	Gender Gender
}

// EventPatch carries the editable fields of an event. Nil means "leave
// unchanged"; a non-nil field equal to the stored value is not a change.
type EventPatch struct {
	Location *string
	Date     *time.Time
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create inserts the event and its creator's participant row in one
	// transaction, setting event.ID.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetDetail returns the event with creator, participants, item claimers,
	// and message senders resolved to display form.
	GetDetail(ctx context.Context, id string) (*EventDetail, error)
	List(ctx context.Context, filter EventFilter) ([]*EventSummary, error)
	// Update applies the patch fields that are non-nil and returns the
	// updated event.
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle operations.
type EventService interface {
	Create(ctx context.Context, event *Event) (*EventDetail, error)
	GetDetail(ctx context.Context, eventID string) (*EventDetail, error)
	List(ctx context.Context, filter EventFilter) ([]*EventSummary, error)
	// Edit applies a creator-only patch to location and/or date. Date edits
	// inside EditLockWindow fail with ErrTooCloseToEdit and nothing is
	// applied. When a field actually changes value, one notification per
	// non-creator participant is persisted and then delivered.
	Edit(ctx context.Context, eventID, callerID string, patch EventPatch) (*EventDetail, error)
	Delete(ctx context.Context, eventID, callerID string) error
}

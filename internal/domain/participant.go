package domain

import (
	"context"
	"errors"
)

// Sentinel errors for roster operations.
var (
	// ErrEventFull is returned when joining or adding a manual participant
	// would push the roster (participants + manual participants) past
	// MaxParticipants.
	ErrEventFull = errors.New("event is full")

	// ErrAlreadyJoined is returned when the caller is already a participant.
	ErrAlreadyJoined = errors.New("already joined")

	// ErrCreatorCannotLeave is returned when the event creator calls leave.
	ErrCreatorCannotLeave = errors.New("creator cannot leave the event")

	// ErrInvalidIndex is returned when a manual-participant index is out of
	// bounds.
	ErrInvalidIndex = errors.New("invalid manual participant index")
)

// ParticipantRepository manages an event's roster: account-bound participants
// and creator-managed manual (non-account) attendees. All writes are single
// atomic statements so the capacity invariant holds under concurrent calls.
type ParticipantRepository interface {
	// Add appends the user to the roster. Fails with ErrEventFull when the
	// combined roster already has maxParticipants entries, and with
	// ErrAlreadyJoined when the user is already on it.
	Add(ctx context.Context, eventID, userID string, maxParticipants int) error
	// Remove takes the user off the roster. Removing an absent user is a
	// no-op.
	Remove(ctx context.Context, eventID, userID string) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	// ListUserIDs returns participant user ids in join order.
	ListUserIDs(ctx context.Context, eventID string) ([]string, error)
	// AddManual appends a free-text attendee, guarded by the same capacity
	// rule as Add.
	AddManual(ctx context.Context, eventID, name string, maxParticipants int) error
	// RemoveManual removes the manual attendee at the given zero-based
	// position. Fails with ErrInvalidIndex when out of bounds.
	RemoveManual(ctx context.Context, eventID string, index int) error
}

// ParticipationService enforces the join/leave rules and the manual roster.
// Every successful mutation returns the refreshed event snapshot, which has
// already been broadcast to the event room.
type ParticipationService interface {
	Join(ctx context.Context, eventID, callerID string) (*EventDetail, error)
	Leave(ctx context.Context, eventID, callerID string) (*EventDetail, error)
	AddManualParticipant(ctx context.Context, eventID, callerID, name string) (*EventDetail, error)
	RemoveManualParticipant(ctx context.Context, eventID, callerID string, index int) (*EventDetail, error)
}

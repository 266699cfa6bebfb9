package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JCHEPO/kiu/internal/domain"
	"github.com/JCHEPO/kiu/internal/monitoring"
)

type eventService struct {
	eventRepo        domain.EventRepository
	participantRepo  domain.ParticipantRepository
	notificationRepo domain.NotificationRepository
	broadcaster      domain.Broadcaster
	contextTimeout   time.Duration
	now              func() time.Time
}

func NewEventService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	notificationRepo domain.NotificationRepository,
	broadcaster domain.Broadcaster,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		participantRepo:  participantRepo,
		notificationRepo: notificationRepo,
		broadcaster:      broadcaster,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatorID == "" {
		return nil, fmt.Errorf("event creator is required")
	}
	if event.MaxParticipants < 1 {
		return nil, domain.ErrInvalidInput
	}
	if event.GenderRestriction == "" {
		event.GenderRestriction = domain.RestrictionMixed
	}
	if !event.GenderRestriction.Valid() {
		return nil, domain.ErrInvalidInput
	}

	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	detail, err := s.eventRepo.GetDetail(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	return detail, nil
}

func (s *eventService) GetDetail(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	return detail, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventSummary{}
	}
	return events, nil
}

// Edit applies a creator-only patch to location and/or date, then fans out
// one notification per non-creator participant when a value actually
// changed. All notifications are persisted before any is delivered.
func (s *eventService) Edit(ctx context.Context, eventID, callerID string, patch domain.EventPatch) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}

	// A field is "changed" only when its new value differs from the stored
	// one; a patch restating the current value triggers no fanout.
	var changed []string
	update := domain.EventPatch{}
	if patch.Location != nil && *patch.Location != event.Location {
		update.Location = patch.Location
		changed = append(changed, "lugar")
	}
	if patch.Date != nil && !patch.Date.Equal(event.Date) {
		// The lock window is measured against the event's current date: once
		// the gathering is under 24 hours away, its date can no longer move.
		// Rejecting here drops the whole patch, location included.
		if event.Date.Sub(s.now()) < domain.EditLockWindow {
			return nil, domain.ErrTooCloseToEdit
		}
		update.Date = patch.Date
		changed = append(changed, "fecha")
	}

	if len(changed) > 0 {
		if _, err := s.eventRepo.Update(ctx, eventID, update); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("update event: %w", err)
		}
		if err := s.fanout(ctx, event, changed); err != nil {
			return nil, err
		}
	}

	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	s.broadcaster.PublishEventUpdate(ctx, detail)
	return detail, nil
}

// fanout builds one notification per current participant except the creator,
// persists the whole batch, and only then delivers each one to its
// recipient's room.
func (s *eventService) fanout(ctx context.Context, event *domain.Event, changed []string) error {
	participantIDs, err := s.participantRepo.ListUserIDs(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}

	message := changeMessage(event.Title, changed)
	notifications := make([]*domain.Notification, 0, len(participantIDs))
	for _, userID := range participantIDs {
		if userID == event.CreatorID {
			continue
		}
		notifications = append(notifications, &domain.Notification{
			RecipientID: userID,
			EventID:     event.ID,
			EventTitle:  event.Title,
			Message:     message,
		})
	}
	if len(notifications) == 0 {
		return nil
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	monitoring.RecordNotificationsCreated(len(notifications))
	for _, n := range notifications {
		s.broadcaster.PublishNotification(ctx, n)
	}
	return nil
}

// changeMessage names the changed fields the way the product always has:
// "lugar" for location, "fecha" for date.
func changeMessage(title string, changed []string) string {
	return fmt.Sprintf("El evento %q ha cambiado de %s", title, strings.Join(changed, " y "))
}

func (s *eventService) Delete(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

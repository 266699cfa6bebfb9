package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JCHEPO/kiu/internal/domain"
)

type participationService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	userRepo        domain.UserRepository
	broadcaster     domain.Broadcaster
}

// NewParticipationService creates a ParticipationService. The broadcaster is
// an explicit dependency: every successful mutation pushes the refreshed
// event to its room.
func NewParticipationService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	userRepo domain.UserRepository,
	broadcaster domain.Broadcaster,
) domain.ParticipationService {
	return &participationService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		broadcaster:     broadcaster,
	}
}

func (s *participationService) Join(ctx context.Context, eventID, callerID string) (*domain.EventDetail, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("get caller: %w", err)
	}
	if !event.GenderRestriction.Allows(caller.Gender) {
		return nil, domain.ErrForbidden
	}

	// Pre-check for a friendly error; the unique constraint still catches a
	// duplicate join racing this check.
	joined, err := s.participantRepo.Exists(ctx, eventID, callerID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if joined {
		return nil, domain.ErrAlreadyJoined
	}

	if err := s.participantRepo.Add(ctx, eventID, callerID, event.MaxParticipants); err != nil {
		if errors.Is(err, domain.ErrEventFull) || errors.Is(err, domain.ErrAlreadyJoined) {
			return nil, err
		}
		return nil, fmt.Errorf("add participant: %w", err)
	}

	return s.refresh(ctx, eventID)
}

func (s *participationService) Leave(ctx context.Context, eventID, callerID string) (*domain.EventDetail, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID == callerID {
		return nil, domain.ErrCreatorCannotLeave
	}

	// Removing a non-participant is a no-op by contract.
	if err := s.participantRepo.Remove(ctx, eventID, callerID); err != nil {
		return nil, fmt.Errorf("remove participant: %w", err)
	}

	return s.refresh(ctx, eventID)
}

func (s *participationService) AddManualParticipant(ctx context.Context, eventID, callerID, name string) (*domain.EventDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

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

	if err := s.participantRepo.AddManual(ctx, eventID, name, event.MaxParticipants); err != nil {
		if errors.Is(err, domain.ErrEventFull) {
			return nil, domain.ErrEventFull
		}
		return nil, fmt.Errorf("add manual participant: %w", err)
	}

	return s.refresh(ctx, eventID)
}

func (s *participationService) RemoveManualParticipant(ctx context.Context, eventID, callerID string, index int) (*domain.EventDetail, error) {
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

	if err := s.participantRepo.RemoveManual(ctx, eventID, index); err != nil {
		if errors.Is(err, domain.ErrInvalidIndex) {
			return nil, domain.ErrInvalidIndex
		}
		return nil, fmt.Errorf("remove manual participant: %w", err)
	}

	return s.refresh(ctx, eventID)
}

// refresh loads the populated snapshot and broadcasts it to the event room.
func (s *participationService) refresh(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	s.broadcaster.PublishEventUpdate(ctx, detail)
	return detail, nil
}

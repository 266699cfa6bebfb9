package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JCHEPO/kiu/internal/domain"
)

type itemService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	itemRepo        domain.ItemRepository
	broadcaster     domain.Broadcaster
}

func NewItemService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	itemRepo domain.ItemRepository,
	broadcaster domain.Broadcaster,
) domain.ItemService {
	return &itemService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		itemRepo:        itemRepo,
		broadcaster:     broadcaster,
	}
}

func (s *itemService) AddItem(ctx context.Context, eventID, callerID, name string) (*domain.EventDetail, error) {
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
		joined, err := s.participantRepo.Exists(ctx, eventID, callerID)
		if err != nil {
			return nil, fmt.Errorf("check participant: %w", err)
		}
		if !joined {
			return nil, domain.ErrForbidden
		}
	}

	if _, err := s.itemRepo.Add(ctx, eventID, name); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	return s.refresh(ctx, eventID)
}

func (s *itemService) ClaimItem(ctx context.Context, eventID, callerID, itemID string) (*domain.EventDetail, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// The repository performs the unclaimed-to-claimed transition atomically;
	// no read-then-write here or two racing claimants could both win.
	if err := s.itemRepo.Claim(ctx, eventID, itemID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadyClaimed) {
			return nil, err
		}
		return nil, fmt.Errorf("claim item: %w", err)
	}

	return s.refresh(ctx, eventID)
}

func (s *itemService) refresh(ctx context.Context, eventID string) (*domain.EventDetail, error) {
	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	s.broadcaster.PublishEventUpdate(ctx, detail)
	return detail, nil
}

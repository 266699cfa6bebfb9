package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JCHEPO/kiu/internal/domain"
)

type wallService struct {
	eventRepo   domain.EventRepository
	messageRepo domain.MessageRepository
	broadcaster domain.Broadcaster
}

func NewWallService(
	eventRepo domain.EventRepository,
	messageRepo domain.MessageRepository,
	broadcaster domain.Broadcaster,
) domain.WallService {
	return &wallService{
		eventRepo:   eventRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
	}
}

func (s *wallService) PostMessage(ctx context.Context, eventID, callerID, text string) (*domain.EventDetail, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if _, err := s.messageRepo.Append(ctx, eventID, callerID, text); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	detail, err := s.eventRepo.GetDetail(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event detail: %w", err)
	}
	s.broadcaster.PublishEventUpdate(ctx, detail)
	return detail, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/JCHEPO/kiu/internal/domain"
)

// notificationFeedLimit caps how many notifications the feed returns; older
// entries stay stored but are never served.
const notificationFeedLimit = 50

type notificationService struct {
	notificationRepo domain.NotificationRepository
}

func NewNotificationService(notificationRepo domain.NotificationRepository) domain.NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) List(ctx context.Context, callerID string) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, callerID, notificationFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, callerID, notificationID string) (*domain.Notification, error) {
	n, err := s.notificationRepo.MarkRead(ctx, notificationID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, callerID string) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return count, nil
}

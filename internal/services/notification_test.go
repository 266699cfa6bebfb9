package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JCHEPO/kiu/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("newest first capped at fifty", func(t *testing.T) {
		nr := newFakeNotificationRepo()
		batch := make([]*domain.Notification, 0, 60)
		for i := 0; i < 60; i++ {
			batch = append(batch, &domain.Notification{
				RecipientID: "user-1",
				EventID:     "ev-1",
				Message:     fmt.Sprintf("cambio %d", i),
			})
		}
		require.NoError(t, nr.CreateBatch(ctx, batch))

		svc := NewNotificationService(nr)
		got, err := svc.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, got, 50)
		assert.Equal(t, "cambio 59", got[0].Message)
	})

	t.Run("empty feed is a slice not nil", func(t *testing.T) {
		svc := NewNotificationService(newFakeNotificationRepo())
		got, err := svc.List(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Len(t, got, 0)
	})

	t.Run("only the caller's notifications", func(t *testing.T) {
		nr := newFakeNotificationRepo()
		require.NoError(t, nr.CreateBatch(ctx, []*domain.Notification{
			{RecipientID: "user-1", EventID: "ev-1", Message: "a"},
			{RecipientID: "user-2", EventID: "ev-1", Message: "b"},
		}))
		svc := NewNotificationService(nr)
		got, err := svc.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "user-1", got[0].RecipientID)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()

	nr := newFakeNotificationRepo()
	require.NoError(t, nr.CreateBatch(ctx, []*domain.Notification{
		{RecipientID: "user-1", EventID: "ev-1", Message: "a"},
	}))
	svc := NewNotificationService(nr)

	t.Run("marks own notification", func(t *testing.T) {
		n, err := svc.MarkRead(ctx, "user-1", "ntf-1")
		require.NoError(t, err)
		assert.True(t, n.Read)
	})

	t.Run("someone else's notification is not found", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, "user-2", "ntf-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, "user-1", "ntf-missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	ctx := context.Background()

	nr := newFakeNotificationRepo()
	require.NoError(t, nr.CreateBatch(ctx, []*domain.Notification{
		{RecipientID: "user-1", EventID: "ev-1", Message: "a"},
		{RecipientID: "user-1", EventID: "ev-1", Message: "b"},
		{RecipientID: "user-2", EventID: "ev-1", Message: "c"},
	}))
	svc := NewNotificationService(nr)

	count, err := svc.MarkAllRead(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Already-read entries are not counted again.
	count, err = svc.MarkAllRead(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

package realtime

import (
	"context"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"

	"github.com/JCHEPO/kiu/internal/domain"
	"github.com/JCHEPO/kiu/internal/monitoring"
)

// Config holds the PubNub keys. Clients subscribe to their rooms directly
// with the subscribe key; this process only publishes.
type Config struct {
	PublishKey   string
	SubscribeKey string
	UUID         string
}

type pubnubBroadcaster struct {
	pn     *pubnub.PubNub
	logger *slog.Logger
}

// NewBroadcaster returns a Broadcaster that publishes room updates over
// PubNub. When the keys are empty it falls back to a no-op implementation so
// the rest of the system runs without a realtime backend.
func NewBroadcaster(cfg Config, logger *slog.Logger) domain.Broadcaster {
	if cfg.PublishKey == "" || cfg.SubscribeKey == "" {
		logger.Warn("pubnub keys not configured, realtime updates disabled")
		return &noopBroadcaster{}
	}
	uuid := cfg.UUID
	if uuid == "" {
		uuid = "kiu-api"
	}
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(uuid))
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	return &pubnubBroadcaster{
		pn:     pubnub.NewPubNub(pnConfig),
		logger: logger,
	}
}

// PublishEventUpdate pushes the full snapshot to the event's room. Failures
// are logged and dropped: the mutation that triggered the push has already
// committed, so delivery is at most once.
func (b *pubnubBroadcaster) PublishEventUpdate(ctx context.Context, event *domain.EventDetail) {
	_, status, err := b.pn.PublishWithContext(ctx).
		Channel(domain.EventRoom(event.ID)).
		Message(map[string]any{
			"type":  "event-updated",
			"event": event,
		}).
		Execute()
	if err != nil || status.Error != nil {
		monitoring.RecordRealtimePublish("event", "error")
		b.logger.Warn("failed to publish event update", "event_id", event.ID, "error", err)
		return
	}
	monitoring.RecordRealtimePublish("event", "ok")
}

// PublishNotification pushes one notification to its recipient's room.
func (b *pubnubBroadcaster) PublishNotification(ctx context.Context, n *domain.Notification) {
	_, status, err := b.pn.PublishWithContext(ctx).
		Channel(domain.UserRoom(n.RecipientID)).
		Message(map[string]any{
			"type":         "new-notification",
			"notification": n,
		}).
		Execute()
	if err != nil || status.Error != nil {
		monitoring.RecordRealtimePublish("user", "error")
		b.logger.Warn("failed to publish notification", "recipient_id", n.RecipientID, "error", err)
		return
	}
	monitoring.RecordRealtimePublish("user", "ok")
}

type noopBroadcaster struct{}

func (noopBroadcaster) PublishEventUpdate(ctx context.Context, event *domain.EventDetail) {}

func (noopBroadcaster) PublishNotification(ctx context.Context, n *domain.Notification) {}

package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/workhive/notify/internal/modules/notification/domain"
	ws "github.com/workhive/notify/internal/modules/notification/infrastructure/websocket"
)

// EventsChannel is the Redis pub/sub channel all instances share. The
// recipient travels inside the envelope; each bridge forwards to whatever
// connections its local hub holds.
const EventsChannel = "notify:events"

// RedisPublisher fans events out across service instances via Redis pub/sub,
// so a client connected to instance A still gets a push for a dispatch that
// happened on instance B.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.rdb.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Bridge subscribes to the shared channel and forwards decoded events to the
// local hub. One bridge runs per process.
type Bridge struct {
	rdb    *redis.Client
	hub    *ws.Hub
	logger *slog.Logger
}

func NewBridge(rdb *redis.Client, hub *ws.Hub, logger *slog.Logger) *Bridge {
	return &Bridge{rdb: rdb, hub: hub, logger: logger}
}

// Run consumes the subscription until ctx is cancelled. go-redis reconnects
// the underlying subscription itself; the retry loop here covers the cases
// where the receive channel closes entirely.
func (b *Bridge) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := b.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("redis bridge disconnected, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		return
	}
}

func (b *Bridge) consume(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, EventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}
			b.forward(msg.Payload)
		case <-ctx.Done():
			return nil
		}
	}
}

func (b *Bridge) forward(payload string) {
	var event domain.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.logger.Warn("redis bridge dropped undecodable event", "error", err)
		return
	}
	if event.Notification == nil {
		return
	}
	// Re-encode rather than forwarding the raw payload so clients always see
	// the envelope this process would produce.
	frame, err := json.Marshal(event)
	if err != nil {
		return
	}
	b.hub.SendToRecipient(event.Notification.Recipient, frame)
}

// Package delivery provides the best-effort transports behind the
// notification Publisher port. Every implementation treats the event store
// as authoritative: a failed publish costs latency, never data.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/workhive/notify/internal/modules/notification/domain"
	ws "github.com/workhive/notify/internal/modules/notification/infrastructure/websocket"
)

// HubPublisher pushes events to subscribers connected to this process's
// websocket hub.
type HubPublisher struct {
	hub *ws.Hub
}

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, event domain.Event) error {
	if event.Notification == nil {
		return errors.New("event has no notification payload")
	}
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	p.hub.SendToRecipient(event.Notification.Recipient, frame)
	return nil
}

// Nop discards every event. Used when real-time delivery is disabled and as
// a test double.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Event) error { return nil }

// Fanout publishes through every sink. It fails only when all sinks fail;
// partial failure is logged and tolerated because any one sink reaching the
// client is enough.
type Fanout struct {
	sinks  []domain.Publisher
	logger *slog.Logger
}

func NewFanout(logger *slog.Logger, sinks ...domain.Publisher) *Fanout {
	return &Fanout{sinks: sinks, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, event domain.Event) error {
	if len(f.sinks) == 0 {
		return nil
	}
	failures := 0
	var lastErr error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			failures++
			lastErr = err
			f.logger.Warn("delivery sink failed", "error", err)
		}
	}
	if failures == len(f.sinks) {
		return fmt.Errorf("all delivery sinks failed: %w", lastErr)
	}
	return nil
}

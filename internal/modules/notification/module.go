package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/workhive/notify/internal/modules/notification/application"
	"github.com/workhive/notify/internal/modules/notification/domain"
	"github.com/workhive/notify/internal/modules/notification/infrastructure/delivery"
	"github.com/workhive/notify/internal/modules/notification/infrastructure/persistence/postgres"
	ws "github.com/workhive/notify/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/workhive/notify/internal/modules/notification/interfaces/http"
)

// Config carries the notification pipeline's tunables.
type Config struct {
	PushTimeout     time.Duration
	RetentionMaxAge time.Duration
	PurgeInterval   time.Duration
	SourceTimeout   time.Duration
}

type Module struct {
	dispatch   *application.DispatchService
	reads      *application.ReadService
	aggregator *application.UnreadAggregator
	handler    *notification_http.NotificationHandler
	hub        *ws.Hub
	purger     *application.RetentionPurger
	bridge     *delivery.Bridge
}

// NewModule wires the notification pipeline. rdb may be nil, in which case
// delivery stays process-local (single-instance deployment). The other
// modules' unread sources (chat, pending applications) are registered
// afterwards via AddUnreadSources, since those modules need this module's
// dispatcher to exist first.
func NewModule(db *sqlx.DB, rdb *redis.Client, cfg Config, logger *slog.Logger) *Module {
	repo := postgres.NewPgNotificationRepository(db)
	hub := ws.NewHub()

	m := &Module{hub: hub}

	var publisher domain.Publisher
	if rdb != nil {
		// With redis, dispatch publishes only to the shared channel and the
		// bridge feeds every instance's local hub, this one included.
		// Publishing to the hub directly as well would double-deliver.
		publisher = delivery.NewRedisPublisher(rdb)
		m.bridge = delivery.NewBridge(rdb, hub, logger)
	} else {
		publisher = delivery.NewHubPublisher(hub)
	}

	m.dispatch = application.NewDispatchService(repo, publisher, cfg.PushTimeout, logger)
	m.reads = application.NewReadService(repo)
	m.purger = application.NewRetentionPurger(repo, cfg.RetentionMaxAge, cfg.PurgeInterval, logger)

	m.aggregator = application.NewUnreadAggregator(cfg.SourceTimeout, logger, &storeSource{reads: m.reads})

	m.handler = notification_http.NewNotificationHandler(m.reads, m.aggregator, hub)
	return m
}

// AddUnreadSources registers additional aggregator sources. Call during
// wiring, before the server starts.
func (m *Module) AddUnreadSources(sources ...application.UnreadSource) {
	m.aggregator.Register(sources...)
}

// Start launches the hub loop, the redis bridge when configured, and the
// retention purger. All of them stop with ctx.
func (m *Module) Start(ctx context.Context) {
	go m.hub.Run()
	go func() {
		<-ctx.Done()
		m.hub.Stop()
	}()

	if m.bridge != nil {
		go m.bridge.Run(ctx)
	}
	go m.purger.Run(ctx)
}

func (m *Module) Dispatcher() application.Dispatcher {
	return m.dispatch
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Hub() *ws.Hub {
	return m.hub
}

// storeSource adapts the event store's own unread count to the aggregator
// port.
type storeSource struct {
	reads *application.ReadService
}

func (s *storeSource) Name() string { return "notifications" }

func (s *storeSource) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	return s.reads.UnreadCount(ctx, recipient)
}

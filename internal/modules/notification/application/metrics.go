package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Notifications dispatched, by kind and outcome.",
	}, []string{"kind", "outcome"})

	deliveryPushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_delivery_push_failures_total",
		Help: "Best-effort push attempts that failed after a durable write.",
	})

	unreadSourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unread_aggregator_source_failures_total",
		Help: "Unread-count sources that failed or timed out during aggregation.",
	}, []string{"source"})

	purgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_purged_total",
		Help: "Read notifications removed by the retention purger.",
	})
)

package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UnreadSource is one independently-fallible contributor to the badge count:
// generic notifications, chat messages, pending applications.
type UnreadSource interface {
	Name() string
	UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error)
}

// SourceCount is one source's contribution to an aggregate result.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Failed bool   `json:"failed,omitempty"`
}

// AggregateResult is the badge number plus its breakdown. Partial is set
// when at least one source failed; its contribution is counted as zero, and
// the flag lets the client render the badge as a lower bound instead of
// silently showing a false "all caught up".
type AggregateResult struct {
	Total   int           `json:"total"`
	Partial bool          `json:"partial"`
	Sources []SourceCount `json:"sources"`
}

// UnreadAggregator fans out to every source concurrently with a per-source
// timeout, so one slow or broken source cannot starve the rest. Concurrent
// aggregations are independent; callers let the latest completed result win.
type UnreadAggregator struct {
	sources       []UnreadSource
	sourceTimeout time.Duration
	logger        *slog.Logger
}

func NewUnreadAggregator(sourceTimeout time.Duration, logger *slog.Logger, sources ...UnreadSource) *UnreadAggregator {
	if sourceTimeout <= 0 {
		sourceTimeout = 3 * time.Second
	}
	return &UnreadAggregator{sources: sources, sourceTimeout: sourceTimeout, logger: logger}
}

// Register adds sources after construction. It is meant for wiring time,
// before the aggregator starts serving requests; it is not safe to call
// concurrently with Aggregate.
func (a *UnreadAggregator) Register(sources ...UnreadSource) {
	a.sources = append(a.sources, sources...)
}

// Aggregate queries every source and sums the successes.
func (a *UnreadAggregator) Aggregate(ctx context.Context, recipient uuid.UUID) AggregateResult {
	counts := make([]SourceCount, len(a.sources))

	var wg sync.WaitGroup
	for i, source := range a.sources {
		wg.Add(1)
		go func(i int, source UnreadSource) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()

			count, err := source.UnreadCount(sctx, recipient)
			if err != nil {
				unreadSourceFailures.WithLabelValues(source.Name()).Inc()
				a.logger.Warn("unread source failed, treating as zero",
					"source", source.Name(),
					"recipient", recipient,
					"error", err)
				counts[i] = SourceCount{Source: source.Name(), Failed: true}
				return
			}
			counts[i] = SourceCount{Source: source.Name(), Count: count}
		}(i, source)
	}
	wg.Wait()

	result := AggregateResult{Sources: counts}
	for _, c := range counts {
		if c.Failed {
			result.Partial = true
			continue
		}
		result.Total += c.Count
	}
	return result
}

package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/jywlabs/scaffold/internal/metrics"
)

// DefaultInterval between drains.
const DefaultInterval = time.Second

// finalDrainTimeout bounds the drain performed after Run's context ends.
const finalDrainTimeout = 30 * time.Second

// Consumer drains a Queue and dispatches each intent against a Transport,
// one at a time and in order.
type Consumer struct {
	queue     Queue
	transport Transport
	interval  time.Duration
	logger    *slog.Logger
}

// NewConsumer creates a consumer. A non-positive interval selects
// DefaultInterval.
func NewConsumer(q Queue, t Transport, interval time.Duration, logger *slog.Logger) *Consumer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{queue: q, transport: t, interval: interval, logger: logger}
}

// Interval returns the drain period.
func (c *Consumer) Interval() time.Duration {
	return c.interval
}

// Run drains immediately and then on every tick until ctx is done, after
// which it performs one last drain so intents pushed before shutdown are
// still delivered.
func (c *Consumer) Run(ctx context.Context) error {
	c.DrainOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.FinalDrain(ctx)
			return nil
		case <-ticker.C:
			c.DrainOnce(ctx)
		}
	}
}

// FinalDrain drains once on a context detached from ctx's cancellation.
func (c *Consumer) FinalDrain(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalDrainTimeout)
	defer cancel()
	return c.DrainOnce(ctx)
}

// DrainOnce dispatches every currently queued intent and returns how many
// were delivered. A failed intent is logged and skipped.
func (c *Consumer) DrainOnce(ctx context.Context) int {
	items, err := c.queue.Drain(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to drain delivery queue", "error", err)
		return 0
	}
	metrics.DrainBatchSize.Observe(float64(len(items)))

	delivered := 0
	for _, in := range items {
		err := Dispatch(ctx, c.transport, in)
		metrics.RecordDelivery(in.Kind(), err)
		if err != nil {
			c.logger.WarnContext(ctx, "delivery failed",
				"kind", in.Kind(),
				"chat_id", in.Chat(),
				"error", err,
			)
			continue
		}
		delivered++
	}
	return delivered
}

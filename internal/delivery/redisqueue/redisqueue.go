// Package redisqueue is a delivery.Queue stored in a Redis stream, so queued
// intents survive a restart of the bot process.
package redisqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jywlabs/scaffold/internal/delivery"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "scaffold:deliveries"

const dataField = "data"

var tracer = otel.Tracer("redisqueue")

// Queue implements delivery.Queue on a Redis stream. Entries are appended
// with XADD and removed with XDEL once read, which is safe because there is
// exactly one consumer.
type Queue struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// New creates a queue on stream. An empty stream selects DefaultStream.
func New(client *redis.Client, stream string, logger *slog.Logger) *Queue {
	if stream == "" {
		stream = DefaultStream
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{client: client, stream: stream, logger: logger}
}

// Push appends in to the stream.
func (q *Queue) Push(ctx context.Context, in delivery.Intent) error {
	ctx, span := tracer.Start(ctx, "redisqueue.Push",
		trace.WithAttributes(
			attribute.String("stream", q.stream),
			attribute.String("intent.kind", in.Kind()),
		))
	defer span.End()

	data, err := delivery.Encode(in)
	if err != nil {
		span.RecordError(err)
		return err
	}

	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{dataField: string(data)},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to push intent: %w", err)
	}
	span.SetAttributes(attribute.String("stream.message_id", id))
	return nil
}

// Drain reads every entry currently in the stream, deletes them and returns
// the decoded intents in stream order. Malformed entries are logged and
// dropped.
func (q *Queue) Drain(ctx context.Context) ([]delivery.Intent, error) {
	ctx, span := tracer.Start(ctx, "redisqueue.Drain",
		trace.WithAttributes(attribute.String("stream", q.stream)))
	defer span.End()

	msgs, err := q.client.XRange(ctx, q.stream, "-", "+").Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read stream %s: %w", q.stream, err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(msgs))
	intents := make([]delivery.Intent, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)

		raw, ok := msg.Values[dataField].(string)
		if !ok {
			q.logger.ErrorContext(ctx, "invalid stream entry", "stream", q.stream, "message_id", msg.ID)
			continue
		}
		in, err := delivery.Decode([]byte(raw))
		if err != nil {
			q.logger.ErrorContext(ctx, "failed to decode intent", "message_id", msg.ID, "error", err)
			continue
		}
		intents = append(intents, in)
	}

	if err := q.client.XDel(ctx, q.stream, ids...).Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to delete drained entries: %w", err)
	}
	span.SetAttributes(attribute.Int("drained", len(intents)))
	return intents, nil
}

package engine

import (
	"context"

	"github.com/jywlabs/scaffold/internal/retry"
)

type retrying struct {
	inner Engine
	cfg   retry.Config
}

// WithRetry wraps e so that transient failures (rate limits, timeouts,
// network errors) are retried with exponential backoff.
func WithRetry(e Engine, cfg retry.Config) Engine {
	return &retrying{inner: e, cfg: cfg}
}

func (r *retrying) Name() string {
	return r.inner.Name()
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	return retry.Do(ctx, r.cfg, func(ctx context.Context) (string, error) {
		return r.inner.Complete(ctx, prompt)
	})
}

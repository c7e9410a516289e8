package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jywlabs/scaffold/internal/archive"
	"github.com/jywlabs/scaffold/internal/artifact"
	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/delivery/redisqueue"
	"github.com/jywlabs/scaffold/internal/engine"
	"github.com/jywlabs/scaffold/internal/git"
	"github.com/jywlabs/scaffold/internal/pipeline"
	"github.com/jywlabs/scaffold/internal/publish"
	"github.com/jywlabs/scaffold/internal/repohost"
	"github.com/jywlabs/scaffold/internal/template"
	"github.com/jywlabs/scaffold/internal/tracing"
)

// newQueue builds the configured delivery queue. The returned function
// releases its resources.
func newQueue(ctx context.Context, cfg *config.Config, log *slog.Logger) (delivery.Queue, func(), error) {
	if cfg.Delivery.Backend != config.BackendRedis {
		return delivery.NewMemoryQueue(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Delivery.Redis.Addr,
		Password: cfg.Delivery.Redis.Password,
		DB:       cfg.Delivery.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Delivery.Redis.Addr, err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	return redisqueue.New(client, cfg.Delivery.Redis.Stream, log), closeFn, nil
}

// newPublisher returns nil when no GitHub token is configured.
func newPublisher(cfg *config.Config, log *slog.Logger) (pipeline.Publisher, error) {
	if cfg.GitHub.Token == "" {
		return nil, nil
	}

	opts := []repohost.Option{repohost.WithPrivate(cfg.GitHub.Private)}
	if cfg.GitHub.APIURL != "" {
		opts = append(opts, repohost.WithBaseURL(cfg.GitHub.APIURL))
	}
	host, err := repohost.New(cfg.GitHub.Token, opts...)
	if err != nil {
		return nil, err
	}

	vcs := &git.Committer{Options: git.Options{
		AuthorName:  cfg.GitHub.CommitterName,
		AuthorEmail: cfg.GitHub.CommitterEmail,
		Branch:      cfg.GitHub.DefaultBranch,
		Token:       cfg.GitHub.Token,
	}}
	return publish.New(host, vcs, log), nil
}

// newPipeline wires the generation pipeline for cfg.
func newPipeline(cfg *config.Config, eng engine.Engine, q delivery.Queue, pub pipeline.Publisher, log *slog.Logger) (*pipeline.Pipeline, error) {
	prompts, err := template.LoadPrompts(cfg.Prompts.Path)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Prompts:     prompts,
		Generator:   artifact.NewGenerator(eng),
		Packager:    archive.Zip,
		Publisher:   pub,
		Queue:       q,
		AuditLog:    pipeline.NewAuditLog(cfg.LogPath()),
		BaseDir:     cfg.App.BaseDir,
		CommandHint: cfg.Pipeline.CommandHint,
		FallbackURL: cfg.Pipeline.FallbackURL,
		Logger:      log,
	})
}

// initTracing installs the span exporter and returns a function that
// flushes it, bounded by a short timeout.
func initTracing(ctx context.Context, cfg *config.Config, log *slog.Logger) (func(), error) {
	shutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:    cfg.Tracing.Enabled,
		Endpoint:   cfg.Tracing.Endpoint,
		SampleRate: cfg.Tracing.SampleRate,
		Insecure:   cfg.Tracing.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Tracing.Enabled {
		log.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint, "sample_rate", cfg.Tracing.SampleRate)
	}
	return func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}, nil
}

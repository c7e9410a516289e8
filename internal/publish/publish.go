// Package publish creates a remote repository for a workspace and pushes the
// workspace to it as a single initial commit.
package publish

import (
	"context"
	"log/slog"
)

// RepoHost creates remote repositories.
type RepoHost interface {
	CreateRepository(ctx context.Context, name string) (string, error)
}

// VCS commits a directory and pushes it to a remote.
type VCS interface {
	CommitAndPush(ctx context.Context, dir, remoteURL string) error
}

// Publisher runs the publish step. Failures never propagate: they are logged
// and reported as an empty URL so the caller can substitute a fallback link.
type Publisher struct {
	Host   RepoHost
	VCS    VCS
	Logger *slog.Logger
}

// New creates a Publisher. A nil host disables publishing.
func New(host RepoHost, vcs VCS, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{Host: host, VCS: vcs, Logger: logger}
}

// Publish creates repository name, commits dir and pushes it. It returns the
// repository URL, or "" when any part of the operation failed.
func (p *Publisher) Publish(ctx context.Context, name, dir string) string {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.Host == nil {
		logger.InfoContext(ctx, "publishing disabled", "project", name)
		return ""
	}

	url, err := p.Host.CreateRepository(ctx, name)
	if err != nil {
		logger.WarnContext(ctx, "repository creation failed", "project", name, "error", err)
		return ""
	}

	if p.VCS != nil {
		if err := p.VCS.CommitAndPush(ctx, dir, url); err != nil {
			logger.WarnContext(ctx, "push failed", "project", name, "remote", url, "error", err)
			return ""
		}
	}

	logger.InfoContext(ctx, "repository published", "project", name, "remote", url)
	return url
}

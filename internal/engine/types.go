package engine

import (
	"context"
	"time"
)

// Engine defines the interface for text-generation backends.
type Engine interface {
	// Name returns the engine identifier (e.g., "openai", "claude", "echo")
	Name() string

	// Complete sends the prompt and returns the generated text.
	// It blocks until the backend answers or ctx is done.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds backend settings shared by all engines.
// Engines ignore fields that do not apply to them.
type Config struct {
	Model   string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultTimeout for a single completion.
const DefaultTimeout = 5 * time.Minute

// Package echo provides an offline engine that returns fixed placeholder text.
// It replaces the network backend for local runs and tests.
package echo

import (
	"context"

	"github.com/jywlabs/scaffold/internal/engine"
)

// Placeholder is the text returned for every prompt.
const Placeholder = "# Test content\n\nThis is a placeholder generated in test mode."

func init() {
	engine.RegisterEngine("echo", func(cfg engine.Config) (engine.Engine, error) {
		return New(), nil
	})
}

// Engine returns Placeholder for every prompt.
type Engine struct {
	Text string
}

// New creates an echo engine.
func New() *Engine {
	return &Engine{Text: Placeholder}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "echo"
}

// Complete returns the configured text without looking at the prompt.
func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.Text, nil
}

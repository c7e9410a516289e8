// Package openai generates text through any OpenAI-compatible chat
// completion endpoint (OpenRouter by default) using the Eino model adapter.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/jywlabs/scaffold/internal/engine"
)

// Defaults used when the configuration leaves a field empty.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o"
)

// ErrEmptyCompletion is returned when the backend answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

func init() {
	engine.RegisterEngine("openai", func(cfg engine.Config) (engine.Engine, error) {
		return New(context.Background(), cfg)
	})
}

// Engine sends each prompt as a single user message.
type Engine struct {
	model model.BaseChatModel
	name  string
}

// New builds an Eino chat model from cfg.
func New(ctx context.Context, cfg engine.Config) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai engine: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = engine.DefaultTimeout
	}

	chatModel, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewWithModel(chatModel), nil
}

// NewWithModel wraps an existing chat model.
func NewWithModel(m model.BaseChatModel) *Engine {
	return &Engine{model: m, name: "openai"}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return e.name
}

// Complete sends prompt and returns the assistant message content.
func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := e.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return msg.Content, nil
}

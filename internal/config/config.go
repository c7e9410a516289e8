// Package config loads runtime settings from an optional YAML file, a .env
// file and the environment.
package config

import (
	"time"
)

// Config is the root of all settings.
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	GitHub   GitHubConfig   `mapstructure:"github" yaml:"github"`
	Delivery DeliveryConfig `mapstructure:"delivery" yaml:"delivery"`
	Prompts  PromptsConfig  `mapstructure:"prompts" yaml:"prompts"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
}

// AppConfig locates generated projects.
type AppConfig struct {
	// BaseDir holds one directory per project plus the audit log.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// TelegramConfig configures the bot front end.
type TelegramConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int  `mapstructure:"poll_timeout" yaml:"poll_timeout"`
	Debug       bool `mapstructure:"debug" yaml:"debug"`
}

// LLMConfig selects and configures the generation engine.
type LLMConfig struct {
	Engine  string        `mapstructure:"engine" yaml:"engine"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// RetryConfig controls retries around each completion.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
}

// GitHubConfig configures repository publishing.
type GitHubConfig struct {
	Token          string `mapstructure:"token" yaml:"token"`
	APIURL         string `mapstructure:"api_url" yaml:"api_url"`
	Private        bool   `mapstructure:"private" yaml:"private"`
	CommitterName  string `mapstructure:"committer_name" yaml:"committer_name"`
	CommitterEmail string `mapstructure:"committer_email" yaml:"committer_email"`
	DefaultBranch  string `mapstructure:"default_branch" yaml:"default_branch"`
}

// DeliveryConfig configures the delivery queue and its consumer.
type DeliveryConfig struct {
	// Backend is "memory" or "redis".
	Backend      string        `mapstructure:"backend" yaml:"backend"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Redis        RedisConfig   `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig is used when the delivery backend is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Stream   string `mapstructure:"stream" yaml:"stream"`
}

// PromptsConfig locates prompt templates. An empty path selects the
// embedded defaults.
type PromptsConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MetricsConfig configures the health and metrics HTTP listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// TracingConfig configures OTLP span export.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// PipelineConfig customizes the final message.
type PipelineConfig struct {
	CommandHint string `mapstructure:"command_hint" yaml:"command_hint"`
	FallbackURL string `mapstructure:"fallback_url" yaml:"fallback_url"`
}

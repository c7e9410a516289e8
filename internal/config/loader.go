package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/pipeline"
	"github.com/jywlabs/scaffold/internal/template"
)

// EnvPrefix prefixes every environment override, e.g. SCAFFOLD_LLM_MODEL.
const EnvPrefix = "SCAFFOLD"

// DefaultConfigName is looked up in the working directory when no file is
// given explicitly.
const DefaultConfigName = "scaffold"

// Delivery backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Mode selects which settings Validate requires.
type Mode int

const (
	// ModeServe runs the chat bot.
	ModeServe Mode = iota
	// ModeGenerate runs a single local generation.
	ModeGenerate
)

// wellKnownEnv maps keys to the unprefixed variable names accepted for
// credentials.
var wellKnownEnv = map[string]string{
	"telegram.token": "TELEGRAM_BOT_TOKEN",
	"llm.api_key":    "OPENROUTER_API_KEY",
	"github.token":   "GITHUB_TOKEN",
}

// Load reads .env (if present), then configFile (or ./scaffold.yaml when
// configFile is empty and the file exists), then environment overrides.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range wellKnownEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.base_dir", "projects")
	v.SetDefault("app.log_file", template.LogFile)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)

	v.SetDefault("llm.engine", "openai")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "openai/gpt-4o")
	v.SetDefault("llm.timeout", "5m")

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", "10s")

	v.SetDefault("github.token", "")
	v.SetDefault("github.api_url", "")
	v.SetDefault("github.private", false)
	v.SetDefault("github.committer_name", "Telegram Bot")
	v.SetDefault("github.committer_email", "bot@example.com")
	v.SetDefault("github.default_branch", "main")

	v.SetDefault("delivery.backend", BackendMemory)
	v.SetDefault("delivery.poll_interval", delivery.DefaultInterval.String())
	v.SetDefault("delivery.redis.addr", "localhost:6379")
	v.SetDefault("delivery.redis.password", "")
	v.SetDefault("delivery.redis.db", 0)
	v.SetDefault("delivery.redis.stream", "scaffold:deliveries")

	v.SetDefault("prompts.path", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9464")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("pipeline.command_hint", pipeline.DefaultCommandHint)
	v.SetDefault("pipeline.fallback_url", pipeline.DefaultFallbackURL)
}

// LogPath returns the audit log location.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.App.LogFile) {
		return c.App.LogFile
	}
	return filepath.Join(c.App.BaseDir, c.App.LogFile)
}

// Validate reports configuration errors that must stop the process before
// any request is accepted.
func (c *Config) Validate(mode Mode) error {
	var errs []error

	if c.App.BaseDir == "" {
		errs = append(errs, errors.New("app.base_dir is required"))
	}
	if mode == ModeServe && c.Telegram.Token == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is not set"))
	}
	if strings.EqualFold(c.LLM.Engine, "openai") && c.LLM.APIKey == "" {
		errs = append(errs, errors.New("OPENROUTER_API_KEY is not set"))
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("retry.max_retries must not be negative"))
	}

	switch c.Delivery.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Delivery.Redis.Addr == "" {
			errs = append(errs, errors.New("delivery.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown delivery backend %q (supported: %s, %s)", c.Delivery.Backend, BackendMemory, BackendRedis))
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate %v must be between 0 and 1", c.Tracing.SampleRate))
	}
	if c.Delivery.PollInterval <= 0 || c.Delivery.PollInterval > time.Minute {
		errs = append(errs, fmt.Errorf("delivery.poll_interval %s must be between 0 and 1m", c.Delivery.PollInterval))
	}

	return errors.Join(errs...)
}

// Warnings lists settings that degrade behavior without being fatal.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.GitHub.Token == "" {
		warnings = append(warnings, "GITHUB_TOKEN is not set; repositories will not be created")
	}
	return warnings
}

// redactedValue replaces secrets in Redacted output.
const redactedValue = "********"

// Redacted returns a copy of c with credentials masked. Unset credentials
// stay empty so the output still shows what is missing.
func (c *Config) Redacted() *Config {
	out := *c
	for _, secret := range []*string{&out.Telegram.Token, &out.LLM.APIKey, &out.GitHub.Token, &out.Delivery.Redis.Password} {
		if *secret != "" {
			*secret = redactedValue
		}
	}
	return &out
}

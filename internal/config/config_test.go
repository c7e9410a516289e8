package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets variables that would leak from the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"TELEGRAM_BOT_TOKEN", "OPENROUTER_API_KEY", "GITHUB_TOKEN"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.BaseDir != "projects" || cfg.App.LogFile != "log.txt" {
		t.Errorf("App = %+v", cfg.App)
	}
	if cfg.LLM.Engine != "openai" || cfg.LLM.Model != "openai/gpt-4o" || cfg.LLM.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 5*time.Minute {
		t.Errorf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Delivery.Backend != BackendMemory || cfg.Delivery.PollInterval != time.Second {
		t.Errorf("Delivery = %+v", cfg.Delivery)
	}
	if cfg.GitHub.CommitterName != "Telegram Bot" || cfg.GitHub.DefaultBranch != "main" {
		t.Errorf("GitHub = %+v", cfg.GitHub)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "localhost:4317" || cfg.Tracing.SampleRate != 1 {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if !strings.Contains(cfg.Pipeline.CommandHint, "{{project_name}}") {
		t.Errorf("CommandHint = %q", cfg.Pipeline.CommandHint)
	}
	if cfg.LogPath() != filepath.Join("projects", "log.txt") {
		t.Errorf("LogPath() = %q", cfg.LogPath())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	content := `
app:
  base_dir: /srv/projects
llm:
  engine: echo
  model: local
delivery:
  backend: redis
  poll_interval: 250ms
  redis:
    addr: redis:6379
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("SCAFFOLD_LLM_MODEL", "from-env")
	t.Setenv("SCAFFOLD_RETRY_MAX_RETRIES", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.BaseDir != "/srv/projects" {
		t.Errorf("BaseDir = %q", cfg.App.BaseDir)
	}
	if cfg.LLM.Engine != "echo" {
		t.Errorf("Engine = %q", cfg.LLM.Engine)
	}
	if cfg.LLM.Model != "from-env" {
		t.Errorf("Model = %q, want env override", cfg.LLM.Model)
	}
	if cfg.Retry.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d", cfg.Retry.MaxRetries)
	}
	if cfg.Delivery.PollInterval != 250*time.Millisecond || cfg.Delivery.Redis.Addr != "redis:6379" {
		t.Errorf("Delivery = %+v", cfg.Delivery)
	}
	if cfg.Telegram.Token != "tg-token" || cfg.GitHub.Token != "gh-token" {
		t.Errorf("tokens = %q, %q", cfg.Telegram.Token, cfg.GitHub.Token)
	}
	if err := cfg.Validate(ModeServe); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadPrefixedCredential(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("SCAFFOLD_LLM_API_KEY", "prefixed")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "prefixed" {
		t.Errorf("APIKey = %q", cfg.LLM.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func validConfig() *Config {
	return &Config{
		App:      AppConfig{BaseDir: "projects", LogFile: "log.txt"},
		Telegram: TelegramConfig{Token: "t"},
		LLM:      LLMConfig{Engine: "openai", APIKey: "k"},
		Delivery: DeliveryConfig{Backend: BackendMemory, PollInterval: time.Second},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid serve", mode: ModeServe},
		{
			name:    "serve without telegram token",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Telegram.Token = "" },
			wantErr: "TELEGRAM_BOT_TOKEN",
		},
		{
			name:   "generate without telegram token",
			mode:   ModeGenerate,
			mutate: func(c *Config) { c.Telegram.Token = "" },
		},
		{
			name:    "openai without api key",
			mode:    ModeGenerate,
			mutate:  func(c *Config) { c.LLM.APIKey = "" },
			wantErr: "OPENROUTER_API_KEY",
		},
		{
			name:   "echo without api key",
			mode:   ModeGenerate,
			mutate: func(c *Config) { c.LLM.Engine = "echo"; c.LLM.APIKey = "" },
		},
		{
			name:    "unknown backend",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Delivery.Backend = "kafka" },
			wantErr: "unknown delivery backend",
		},
		{
			name:    "redis without addr",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Delivery.Backend = BackendRedis },
			wantErr: "delivery.redis.addr",
		},
		{
			name:    "zero poll interval",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Delivery.PollInterval = 0 },
			wantErr: "poll_interval",
		},
		{
			name:    "tracing without endpoint",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Tracing = TracingConfig{Enabled: true, SampleRate: 1} },
			wantErr: "tracing.endpoint",
		},
		{
			name:    "sample rate above one",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Tracing.SampleRate = 1.5 },
			wantErr: "sample_rate",
		},
		{
			name:    "negative retries",
			mode:    ModeServe,
			mutate:  func(c *Config) { c.Retry.MaxRetries = -1 },
			wantErr: "max_retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate(tt.mode)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	if w := cfg.Warnings(); len(w) != 1 || !strings.Contains(w[0], "GITHUB_TOKEN") {
		t.Errorf("Warnings() = %v", w)
	}
	cfg.GitHub.Token = "x"
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("Warnings() = %v, want none", w)
	}
}

func TestLogPathAbsolute(t *testing.T) {
	cfg := validConfig()
	cfg.App.LogFile = "/var/log/scaffold.txt"
	if cfg.LogPath() != "/var/log/scaffold.txt" {
		t.Errorf("LogPath() = %q", cfg.LogPath())
	}
}

func TestRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub.Token = "ghp_secret"
	cfg.Delivery.Redis.Password = ""

	got := cfg.Redacted()
	if got.Telegram.Token != redactedValue || got.LLM.APIKey != redactedValue || got.GitHub.Token != redactedValue {
		t.Fatalf("credentials not masked: %+v", got)
	}
	if got.Delivery.Redis.Password != "" {
		t.Errorf("unset password = %q, want empty", got.Delivery.Redis.Password)
	}
	if cfg.GitHub.Token != "ghp_secret" {
		t.Error("Redacted modified the original config")
	}
	if got.App != cfg.App {
		t.Errorf("App = %+v, want %+v", got.App, cfg.App)
	}
}

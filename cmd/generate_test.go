package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/logger"
	"github.com/jywlabs/scaffold/internal/pipeline"
	"github.com/jywlabs/scaffold/internal/template"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:      config.AppConfig{BaseDir: t.TempDir(), LogFile: template.LogFile},
		LLM:      config.LLMConfig{Engine: "openai"},
		GitHub:   config.GitHubConfig{Token: "should-be-ignored"},
		Delivery: config.DeliveryConfig{Backend: config.BackendMemory, PollInterval: 10 * time.Millisecond},
	}
}

func TestGenerateProject(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	result, err := generateProject(context.Background(), cfg, generateOptions{
		Name:        "demo",
		Description: "a todo app",
		Engine:      "echo",
		NoPublish:   true,
	}, &out, logger.Discard())
	if err != nil {
		t.Fatalf("generateProject returned error: %v", err)
	}
	if result.State != pipeline.StateCompleted {
		t.Fatalf("State = %s, want %s (err: %v)", result.State, pipeline.StateCompleted, result.Err)
	}
	if result.RepoURL != "" {
		t.Errorf("RepoURL = %q, want empty with --no-publish", result.RepoURL)
	}

	for _, rel := range []string{
		filepath.Join(template.DocsDir, template.PRDFile),
		template.ReadmeFile,
		template.ComposeFile,
	} {
		if _, err := os.Stat(filepath.Join(result.Workspace, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.App.BaseDir, "demo"+template.ArchiveExt)); err != nil {
		t.Errorf("missing archive: %v", err)
	}

	printed := out.String()
	for _, want := range []string{msgStarted, "PRD", "demo", pipeline.DefaultFallbackURL} {
		if !strings.Contains(printed, want) {
			t.Errorf("output missing %q:\n%s", want, printed)
		}
	}
}

func TestGenerateProjectRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		opts generateOptions
		want string
	}{
		{
			name: "path separator in name",
			opts: generateOptions{Name: "a/b", Description: "x", Engine: "echo", NoPublish: true},
			want: "project name",
		},
		{
			name: "openai without key",
			opts: generateOptions{Name: "demo", Description: "x", NoPublish: true},
			want: "OPENROUTER_API_KEY",
		},
		{
			name: "unknown engine",
			opts: generateOptions{Name: "demo", Description: "x", Engine: "nope", NoPublish: true},
			want: "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := generateProject(context.Background(), testConfig(t), tt.opts, &out, logger.Discard())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestGenerateProjectBaseDirOverride(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()

	result, err := generateProject(context.Background(), cfg, generateOptions{
		Name:        "shop",
		Description: "an online store",
		Engine:      "echo",
		BaseDir:     dir,
		NoPublish:   true,
	}, &bytes.Buffer{}, logger.Discard())
	if err != nil {
		t.Fatalf("generateProject returned error: %v", err)
	}
	if result.Workspace != filepath.Join(dir, "shop") {
		t.Fatalf("Workspace = %q, want under %q", result.Workspace, dir)
	}
	data, err := os.ReadFile(filepath.Join(dir, template.LogFile))
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if !strings.Contains(string(data), `project="shop"`) {
		t.Fatalf("audit log = %q", data)
	}
}

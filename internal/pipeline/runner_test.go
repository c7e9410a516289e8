package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jywlabs/scaffold/internal/artifact"
	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/logger"
	"github.com/jywlabs/scaffold/internal/template"
)

// gatedGenerator blocks every call until release is closed.
type gatedGenerator struct {
	inner   Generator
	release chan struct{}
}

func (g *gatedGenerator) Generate(ctx context.Context, prompt, path string) (artifact.Artifact, error) {
	<-g.release
	return g.inner.Generate(ctx, prompt, path)
}

func TestRunnerRejectsBusyProject(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, func(c *Config) {
		c.Generator = &gatedGenerator{inner: c.Generator, release: gate}
	})
	r := NewRunner(f.pipeline, logger.Discard())
	ctx := context.Background()

	h, err := r.Submit(ctx, demoRequest())
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if h.RunID == "" {
		t.Error("RunID is empty")
	}

	if _, err := r.Submit(ctx, demoRequest()); !errors.Is(err, ErrProjectBusy) {
		t.Errorf("second Submit() error = %v, want ErrProjectBusy", err)
	}

	other := demoRequest()
	other.ProjectName = "other"
	h2, err := r.Submit(ctx, other)
	if err != nil {
		t.Fatalf("Submit(other) error: %v", err)
	}
	if r.Active() != 2 {
		t.Errorf("Active() = %d, want 2", r.Active())
	}

	close(gate)
	if res := h.Wait(); res.State != StateCompleted {
		t.Errorf("demo run = %+v", res)
	}
	if res := h2.Wait(); res.State != StateCompleted {
		t.Errorf("other run = %+v", res)
	}
	r.Wait()

	if r.Active() != 0 {
		t.Errorf("Active() after Wait = %d, want 0", r.Active())
	}
	h3, err := r.Submit(ctx, demoRequest())
	if err != nil {
		t.Fatalf("Submit() after completion error: %v", err)
	}
	h3.Wait()
}

func TestRunnerRejectsInvalidName(t *testing.T) {
	f := newFixture(t, nil)
	r := NewRunner(f.pipeline, logger.Discard())

	for _, name := range []string{"", "  ", ".", "..", "a/b", `a\b`, "demo.zip", template.LogFile} {
		req := demoRequest()
		req.ProjectName = name
		if _, err := r.Submit(context.Background(), req); !errors.Is(err, ErrInvalidProjectName) {
			t.Errorf("Submit(%q) error = %v, want ErrInvalidProjectName", name, err)
		}
	}
	if queued, _ := f.queue.Drain(context.Background()); len(queued) != 0 {
		t.Errorf("rejected submissions queued %d intents", len(queued))
	}
}

func TestRunnerIgnoresCallerCancellation(t *testing.T) {
	gate := make(chan struct{})
	f := newFixture(t, func(c *Config) {
		c.Generator = &gatedGenerator{inner: c.Generator, release: gate}
	})
	r := NewRunner(f.pipeline, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	h, err := r.Submit(ctx, demoRequest())
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	close(gate)

	if res := h.Wait(); res.State != StateCompleted {
		t.Errorf("run after caller cancellation = %+v, want completed", res)
	}
}

func TestRunnerConcurrentRunsKeepPerRunOrder(t *testing.T) {
	f := newFixture(t, nil)
	r := NewRunner(f.pipeline, logger.Discard())

	const runs = 4
	for i := 0; i < runs; i++ {
		req := Request{
			ProjectName:     fmt.Sprintf("p%d", i),
			Description:     "concurrent",
			ChatID:          int64(100 + i),
			StatusMessageID: i,
		}
		if _, err := r.Submit(context.Background(), req); err != nil {
			t.Fatalf("Submit(%s) error: %v", req.ProjectName, err)
		}
	}
	r.Wait()

	byChat := make(map[int64][]delivery.Intent)
	for _, in := range f.drain(t) {
		byChat[in.Chat()] = append(byChat[in.Chat()], in)
	}
	if len(byChat) != runs {
		t.Fatalf("intents for %d chats, want %d", len(byChat), runs)
	}

	for i := 0; i < runs; i++ {
		intents := byChat[int64(100+i)]
		workspace := filepath.Join(f.baseDir, fmt.Sprintf("p%d", i))

		var want []string
		for _, rel := range generatedFiles {
			want = append(want, filepath.Join(workspace, rel))
		}
		want = append(want, workspace+".zip")
		if got := sentFiles(intents); !reflect.DeepEqual(got, want) {
			t.Errorf("run p%d SendFile order = %v, want %v", i, got, want)
		}
		if _, ok := intents[0].(delivery.EditStatus); !ok {
			t.Errorf("run p%d first intent = %#v", i, intents[0])
		}
		if _, ok := intents[len(intents)-1].(delivery.SendFinal); !ok {
			t.Errorf("run p%d last intent = %#v", i, intents[len(intents)-1])
		}
	}

	if lines := f.logLines(t); len(lines) != runs {
		t.Errorf("log has %d lines, want %d", len(lines), runs)
	}
}

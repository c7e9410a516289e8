package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jywlabs/scaffold/internal/logger"
	"github.com/jywlabs/scaffold/internal/metrics"
)

// Runner starts one goroutine per accepted request and keeps at most one
// run per project name in flight.
type Runner struct {
	pipeline *Pipeline
	logger   *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// NewRunner creates a Runner for p.
func NewRunner(p *Pipeline, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		pipeline: p,
		logger:   log,
		active:   make(map[string]struct{}),
	}
}

// Handle tracks a submitted run.
type Handle struct {
	RunID  string
	done   chan struct{}
	result Result
}

// Done is closed when the run finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its result.
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

// Submit validates req and starts its run in the background. It returns
// ErrInvalidProjectName or ErrProjectBusy without starting anything.
// The run is not cancelled when ctx is; only ctx's values are inherited.
func (r *Runner) Submit(ctx context.Context, req Request) (*Handle, error) {
	if err := r.pipeline.ValidateName(req.ProjectName); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}
	if !r.acquire(req.ProjectName) {
		metrics.PipelineRunsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, ErrProjectBusy
	}

	h := &Handle{RunID: uuid.NewString(), done: make(chan struct{})}
	runCtx := logger.WithRun(context.WithoutCancel(ctx), h.RunID, req.ProjectName, req.ChatID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(h.done)
		defer r.release(req.ProjectName)

		h.result = r.pipeline.Run(runCtx, req)
	}()

	logger.FromContext(runCtx, r.logger).Info("run submitted")
	return h, nil
}

// Wait blocks until every submitted run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Active returns the number of runs in flight.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

func (r *Runner) acquire(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[name]; busy {
		return false
	}
	r.active[name] = struct{}{}
	return true
}

func (r *Runner) release(name string) {
	r.mu.Lock()
	delete(r.active, name)
	r.mu.Unlock()
}

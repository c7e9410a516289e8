package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jywlabs/scaffold/internal/artifact"
	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/logger"
	"github.com/jywlabs/scaffold/internal/metrics"
	"github.com/jywlabs/scaffold/internal/template"
)

// tracerName identifies spans created by this package.
const tracerName = "github.com/jywlabs/scaffold/internal/pipeline"

// Generator produces one file from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, path string) (artifact.Artifact, error)
}

// Packager archives srcDir into destPath and returns the number of entries.
type Packager func(srcDir, destPath string) (int, error)

// Publisher publishes a workspace and returns its repository URL, or "" when
// publishing did not succeed.
type Publisher interface {
	Publish(ctx context.Context, name, dir string) string
}

// Config wires a Pipeline.
type Config struct {
	Prompts   template.Prompts
	Generator Generator
	Packager  Packager
	// Publisher may be nil, in which case runs complete without a repository.
	Publisher Publisher
	Queue     delivery.Queue
	AuditLog  *AuditLog

	// BaseDir holds one workspace directory per project.
	BaseDir string
	// CommandHint is shown in the final message; {{project_name}} is
	// replaced with the project name.
	CommandHint string
	// FallbackURL is linked when no repository URL is available.
	FallbackURL string

	Logger *slog.Logger

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Pipeline executes generation runs. A Pipeline is safe for concurrent use
// by runs for different projects.
type Pipeline struct {
	cfg    Config
	tracer trace.Tracer
}

// New validates cfg and creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Prompts == nil {
		return nil, errors.New("pipeline: prompts are required")
	}
	if err := cfg.Prompts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if cfg.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	if cfg.Packager == nil {
		return nil, errors.New("pipeline: packager is required")
	}
	if cfg.Queue == nil {
		return nil, errors.New("pipeline: delivery queue is required")
	}
	if cfg.BaseDir == "" {
		return nil, errors.New("pipeline: base directory is required")
	}
	if cfg.AuditLog == nil {
		cfg.AuditLog = NewAuditLog(filepath.Join(cfg.BaseDir, template.LogFile))
	}
	if cfg.CommandHint == "" {
		cfg.CommandHint = DefaultCommandHint
	}
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = DefaultFallbackURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	return &Pipeline{cfg: cfg, tracer: cfg.TracerProvider.Tracer(tracerName)}, nil
}

// WorkspacePath returns the directory used for project name.
func (p *Pipeline) WorkspacePath(name string) string {
	return filepath.Join(p.cfg.BaseDir, name)
}

// ValidateName applies ValidateProjectName and also rejects names whose
// workspace would be, or would contain, the audit log.
func (p *Pipeline) ValidateName(name string) error {
	if err := ValidateProjectName(name); err != nil {
		return err
	}
	ws := filepath.Clean(p.WorkspacePath(name))
	logPath := filepath.Clean(p.cfg.AuditLog.Path())
	if strings.EqualFold(ws, logPath) {
		return fmt.Errorf("%w: %q is reserved for the audit log", ErrInvalidProjectName, name)
	}
	if rel, err := filepath.Rel(ws, logPath); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q is reserved for the audit log", ErrInvalidProjectName, name)
	}
	return nil
}

// run is the mutable state of one execution.
type run struct {
	req     Request
	state   State
	index   int
	dir     string
	prd     string
	archive string
	repoURL string
}

// Run executes every step for req and returns once the run reaches
// Completed or Failed. Each run produces at least one notification.
func (p *Pipeline) Run(ctx context.Context, req Request) Result {
	ctx, runSpan := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("project", req.ProjectName),
		attribute.Int64("chat_id", req.ChatID),
	))
	defer runSpan.End()

	log := logger.FromContext(ctx, p.cfg.Logger)
	r := &run{req: req, state: StateCreatingWorkspace}

	metrics.PipelinesInFlight.Inc()
	defer metrics.PipelinesInFlight.Dec()

	log.Info("pipeline started", "description", req.Description)

	for !r.state.Terminal() {
		current := r.state
		started := time.Now()

		stepCtx, span := p.tracer.Start(ctx, "pipeline."+string(current),
			trace.WithAttributes(
				attribute.String("project", req.ProjectName),
				attribute.Int("step.index", r.index),
			))
		next, err := p.advance(stepCtx, r)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.PipelineStepDuration.WithLabelValues(string(current)).Observe(time.Since(started).Seconds())

		if err != nil {
			log.Error("pipeline step failed", "state", current, "index", r.index, "error", err)
			p.fail(ctx, r, err)
			runSpan.SetStatus(codes.Error, err.Error())
			runSpan.SetAttributes(attribute.String("failed_in", string(current)))
			metrics.PipelineRunsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			return Result{
				State:     StateFailed,
				FailedIn:  current,
				Workspace: r.dir,
				Archive:   r.archive,
				RepoURL:   r.repoURL,
				Err:       err,
			}
		}
		r.state = next
	}

	if err := p.finish(ctx, r); err != nil {
		log.Error("failed to queue final message", "error", err)
	}
	metrics.PipelineRunsTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	log.Info("pipeline completed", "repo", r.repoURL)

	return Result{
		State:     StateCompleted,
		Workspace: r.dir,
		Archive:   r.archive,
		RepoURL:   r.repoURL,
	}
}

// advance performs the work of r.state and returns the next state.
func (p *Pipeline) advance(ctx context.Context, r *run) (State, error) {
	switch r.state {
	case StateCreatingWorkspace:
		if err := p.createWorkspace(r); err != nil {
			return StateFailed, err
		}
		return StateGeneratingDocs, nil

	case StateGeneratingDocs:
		if err := p.generate(ctx, r, docSteps[r.index], r.index == 0); err != nil {
			return StateFailed, err
		}
		r.index++
		if r.index < len(docSteps) {
			return StateGeneratingDocs, nil
		}
		r.index = 0
		return StateGeneratingCodeFiles, nil

	case StateGeneratingCodeFiles:
		if err := p.generate(ctx, r, codeSteps[r.index], false); err != nil {
			return StateFailed, err
		}
		r.index++
		if r.index < len(codeSteps) {
			return StateGeneratingCodeFiles, nil
		}
		r.index = 0
		return StatePackaging, nil

	case StatePackaging:
		if err := p.pack(ctx, r); err != nil {
			return StateFailed, err
		}
		return StatePublishing, nil

	case StatePublishing:
		if err := p.publish(ctx, r); err != nil {
			return StateFailed, err
		}
		return StateLogging, nil

	case StateLogging:
		err := p.cfg.AuditLog.Append(AuditEntry{
			Time:        time.Now(),
			Status:      StateCompleted,
			Project:     r.req.ProjectName,
			Description: r.req.Description,
			RepoURL:     r.repoURL,
		})
		if err != nil {
			return StateFailed, err
		}
		return StateCompleted, nil

	default:
		return StateFailed, fmt.Errorf("unknown pipeline state: %s", r.state)
	}
}

func (p *Pipeline) createWorkspace(r *run) error {
	if err := p.ValidateName(r.req.ProjectName); err != nil {
		return err
	}
	r.dir = p.WorkspacePath(r.req.ProjectName)
	for _, sub := range template.WorkspaceDirs() {
		if err := os.MkdirAll(filepath.Join(r.dir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
	}
	return nil
}

// generate runs one file step. The first step of a run edits the status
// message; every other step announces itself with a new message.
func (p *Pipeline) generate(ctx context.Context, r *run, s genStep, first bool) error {
	var notice delivery.Intent = delivery.SendText{ChatID: r.req.ChatID, Text: s.progress}
	if first {
		notice = delivery.EditStatus{ChatID: r.req.ChatID, MessageID: r.req.StatusMessageID, Text: s.progress}
	}
	if err := p.emit(ctx, notice); err != nil {
		return err
	}

	prompt, err := p.cfg.Prompts.Render(s.prompt, map[string]string{
		template.KeyProjectName: r.req.ProjectName,
		template.KeyDescription: r.req.Description,
		template.KeyPRD:         r.prd,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(r.dir, s.relPath())
	a, err := p.cfg.Generator.Generate(ctx, prompt, path)
	if err != nil {
		return err
	}
	if s.prompt == template.PromptPRD {
		r.prd = a.Content
	}
	logger.FromContext(ctx, p.cfg.Logger).Debug("file generated", "path", path, "bytes", len(a.Content))

	return p.emit(ctx, delivery.SendFile{ChatID: r.req.ChatID, Path: path, Caption: s.caption})
}

func (p *Pipeline) pack(ctx context.Context, r *run) error {
	if err := p.emit(ctx, delivery.SendText{ChatID: r.req.ChatID, Text: msgPackaging}); err != nil {
		return err
	}
	r.archive = r.dir + template.ArchiveExt
	n, err := p.cfg.Packager(r.dir, r.archive)
	if err != nil {
		return fmt.Errorf("failed to archive workspace: %w", err)
	}
	logger.FromContext(ctx, p.cfg.Logger).Debug("workspace archived", "path", r.archive, "entries", n)
	return p.emit(ctx, delivery.SendFile{ChatID: r.req.ChatID, Path: r.archive, Caption: msgArchived})
}

func (p *Pipeline) publish(ctx context.Context, r *run) error {
	if err := p.emit(ctx, delivery.SendText{ChatID: r.req.ChatID, Text: msgPublishing}); err != nil {
		return err
	}
	if p.cfg.Publisher != nil {
		r.repoURL = p.cfg.Publisher.Publish(ctx, r.req.ProjectName, r.dir)
	}
	if r.repoURL == "" {
		metrics.PublishDegradedTotal.Inc()
	}
	return nil
}

func (p *Pipeline) finish(ctx context.Context, r *run) error {
	link := r.repoURL
	if link == "" {
		link = p.cfg.FallbackURL
	}
	hint := template.Interpolate(p.cfg.CommandHint, map[string]string{
		template.KeyProjectName: r.req.ProjectName,
	})
	return p.emit(ctx, delivery.SendFinal{
		ChatID:    r.req.ChatID,
		Text:      fmt.Sprintf(msgReady, delivery.EscapeMarkdown(r.req.ProjectName), delivery.EscapeMarkdownCode(hint)),
		ParseMode: delivery.ParseModeMarkdown,
		Link:      &delivery.ActionLink{Label: linkLabel, URL: link},
	})
}

// fail reports err to the user and records the failed run. Files already
// written stay on disk.
func (p *Pipeline) fail(ctx context.Context, r *run, err error) {
	log := logger.FromContext(ctx, p.cfg.Logger)

	if qerr := p.emit(ctx, delivery.SendText{ChatID: r.req.ChatID, Text: fmt.Sprintf(msgError, err)}); qerr != nil {
		log.Error("failed to queue error message", "error", qerr)
	}

	if r.state == StateLogging {
		return
	}
	aerr := p.cfg.AuditLog.Append(AuditEntry{
		Time:        time.Now(),
		Status:      StateFailed,
		Project:     r.req.ProjectName,
		Description: r.req.Description,
		RepoURL:     r.repoURL,
	})
	if aerr != nil {
		log.Warn("failed to record failed run", "error", aerr)
	}
}

func (p *Pipeline) emit(ctx context.Context, in delivery.Intent) error {
	if err := p.cfg.Queue.Push(ctx, in); err != nil {
		return fmt.Errorf("failed to queue %s: %w", in.Kind(), err)
	}
	return nil
}

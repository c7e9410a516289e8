// Package pipeline runs the fixed sequence of generation, packaging and
// publishing steps for one project and reports progress as delivery intents.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jywlabs/scaffold/internal/template"
)

// Request is one project generation request. It is not modified once
// submitted.
type Request struct {
	ProjectName     string
	Description     string
	ChatID          int64
	StatusMessageID int
}

// State is a pipeline state.
type State string

// Pipeline states in execution order. Failed is reachable from every
// non-terminal state.
const (
	StateCreatingWorkspace   State = "creating_workspace"
	StateGeneratingDocs      State = "generating_docs"
	StateGeneratingCodeFiles State = "generating_code_files"
	StatePackaging           State = "packaging"
	StatePublishing          State = "publishing"
	StateLogging             State = "logging"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var (
	// ErrProjectBusy is returned when a pipeline for the same project name
	// is still running.
	ErrProjectBusy = errors.New("project is already being generated")
	// ErrInvalidProjectName is returned for names that cannot be used as a
	// single directory name.
	ErrInvalidProjectName = errors.New("invalid project name")
)

// ValidateProjectName checks that name is a single, non-empty path element
// that cannot be mistaken for another project's archive.
func ValidateProjectName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidProjectName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidProjectName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidProjectName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: name contains a NUL byte", ErrInvalidProjectName)
	case len(name) >= len(template.ArchiveExt) && strings.EqualFold(name[len(name)-len(template.ArchiveExt):], template.ArchiveExt):
		return fmt.Errorf("%w: %q ends in %s, which is reserved for archives", ErrInvalidProjectName, name, template.ArchiveExt)
	}
	return nil
}

// Result describes a finished run.
type Result struct {
	State State
	// FailedIn is the state the run was in when it failed.
	FailedIn  State
	Workspace string
	Archive   string
	// RepoURL is empty when publishing was skipped or degraded.
	RepoURL string
	Err     error
}

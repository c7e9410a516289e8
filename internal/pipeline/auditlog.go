package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEntry is one line of the audit log.
type AuditEntry struct {
	Time        time.Time
	Status      State
	Project     string
	Description string
	RepoURL     string
}

// Line formats the entry as a single line. Free-text fields are quoted so
// embedded newlines cannot split the record.
func (e AuditEntry) Line() string {
	repo := e.RepoURL
	if repo == "" {
		repo = "none"
	}
	return fmt.Sprintf("%s status=%s project=%q description=%q repo=%q\n",
		e.Time.UTC().Format(time.RFC3339), e.Status, e.Project, e.Description, repo)
}

// AuditLog is an append-only log file shared by all pipeline runs. Appends
// are serialized so concurrent runs never interleave partial lines.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

// NewAuditLog creates a log writing to path. The file is created on first
// append.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Path returns the log file location.
func (l *AuditLog) Path() string {
	return l.path
}

// Append writes one entry.
func (l *AuditLog) Append(e AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	if _, err := f.WriteString(e.Line()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}

// Package artifact turns one prompt into one generated file on disk.
package artifact

import (
	"context"
	"os"

	"github.com/jywlabs/scaffold/internal/engine"
)

// Artifact is a generated file and the text written to it.
type Artifact struct {
	Path    string
	Content string
}

// Generator calls an engine and persists its answer.
type Generator struct {
	engine engine.Engine
}

// NewGenerator creates a Generator backed by e.
func NewGenerator(e engine.Engine) *Generator {
	return &Generator{engine: e}
}

// Generate completes prompt and writes the text verbatim to path, creating
// or truncating the file. The parent directory must already exist.
// Engine and filesystem errors are returned as-is; there is no retry here.
func (g *Generator) Generate(ctx context.Context, prompt, path string) (Artifact, error) {
	content, err := g.engine.Complete(ctx, prompt)
	if err != nil {
		return Artifact{}, err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return Artifact{}, err
	}
	return Artifact{Path: path, Content: content}, nil
}

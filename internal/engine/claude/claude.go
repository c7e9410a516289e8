// Package claude generates text by running the Claude Code CLI in print mode.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/jywlabs/scaffold/internal/engine"
)

func init() {
	engine.RegisterEngine("claude", func(cfg engine.Config) (engine.Engine, error) {
		e := New()
		if cfg.Timeout > 0 {
			e.Timeout = cfg.Timeout
		}
		e.Model = cfg.Model
		return e, nil
	})
}

// response is the JSON document printed by `claude -p --output-format json`.
type response struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
}

// Engine executes prompts using the Claude CLI.
type Engine struct {
	Timeout time.Duration
	Model   string
}

// New creates a Claude engine with the default timeout.
func New() *Engine {
	return &Engine{
		Timeout: engine.DefaultTimeout,
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "claude"
}

// CLICommand returns the CLI executable name.
func (e *Engine) CLICommand() string {
	return "claude"
}

// BuildArgs returns the CLI arguments for one completion.
func (e *Engine) BuildArgs(prompt string) []string {
	args := []string{"-p", "--output-format", "json"}
	if e.Model != "" {
		args = append(args, "--model", e.Model)
	}
	return append(args, prompt)
}

// Complete runs the CLI and returns the result text.
func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = engine.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.CLICommand(), e.BuildArgs(prompt)...)
	// No controlling TTY: the CLI prints interactive hints otherwise.
	cmd.Stdin = nil
	cmd.SysProcAttr = newSysProcAttr()
	setupProcessCleanup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("execution timed out after %s", timeout)
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("command failed: %w: %s", err, stderr.String())
		}
		return "", fmt.Errorf("command failed: %w", err)
	}

	return parseResponse(stdout.Bytes())
}

// parseResponse extracts the result text from the CLI's JSON output.
func parseResponse(data []byte) (string, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Subtype == "success" && !resp.IsError {
		return resp.Result, nil
	}

	errMsg := resp.Subtype
	if resp.Result != "" {
		errMsg = resp.Result
	}
	return "", fmt.Errorf("claude execution failed: %s", errMsg)
}

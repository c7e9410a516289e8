package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/engine"
	"github.com/jywlabs/scaffold/internal/retry"

	// Register available engines.
	_ "github.com/jywlabs/scaffold/internal/engine/claude"
	_ "github.com/jywlabs/scaffold/internal/engine/echo"
	_ "github.com/jywlabs/scaffold/internal/engine/openai"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List generation engines",
	Long: `List the registered generation engines.

  openai   OpenAI-compatible chat completions (OpenRouter by default)
  claude   Claude Code CLI in print mode
  echo     Fixed placeholder text, no network access`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(engine.Available(), "\n"))
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

// newEngine creates the configured engine with retries around every
// completion.
func newEngine(cfg *config.Config, log *slog.Logger) (engine.Engine, error) {
	e, err := engine.New(cfg.LLM.Engine, engine.Config{
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return engine.WithRetry(e, retry.Config{
		MaxRetries:       cfg.Retry.MaxRetries,
		BaseDelay:        cfg.Retry.BaseDelay,
		MaxJitterPercent: retry.DefaultMaxJitterPercent,
		Logger:           log,
	}), nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/logger"
	"github.com/jywlabs/scaffold/internal/output"
	"github.com/jywlabs/scaffold/internal/pipeline"
)

// msgStarted is the status line the console run starts with.
const msgStarted = "⏳ Processing your request..."

// generateOptions are the flags of the generate command.
type generateOptions struct {
	Name        string
	Description string
	Engine      string
	BaseDir     string
	NoPublish   bool
}

var generateFlags generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one project locally",
	Long: `Generate one project without a chat service.

Runs the same pipeline as the bot and prints every delivery (status
updates, documents, the archive and the final summary) to the terminal.

Examples:
  scaffold generate --name demo --description "a todo app"
  scaffold generate --name demo --description "a todo app" --engine echo --no-publish
  scaffold generate --name shop --description "an online store" --base-dir /tmp/projects`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.Name, "name", "n", "", "Project name (required)")
	generateCmd.Flags().StringVarP(&generateFlags.Description, "description", "d", "", "App description (required)")
	generateCmd.Flags().StringVarP(&generateFlags.Engine, "engine", "e", "", "Engine override: openai, claude or echo")
	generateCmd.Flags().StringVar(&generateFlags.BaseDir, "base-dir", "", "Directory projects are created under")
	generateCmd.Flags().BoolVar(&generateFlags.NoPublish, "no-publish", false, "Skip GitHub repository creation")
	_ = generateCmd.MarkFlagRequired("name")
	_ = generateCmd.MarkFlagRequired("description")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopTracing, err := initTracing(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	result, err := generateProject(ctx, cfg, generateFlags, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	if result.State != pipeline.StateCompleted {
		return fmt.Errorf("generation failed in %s: %w", result.FailedIn, result.Err)
	}
	return nil
}

// generateProject runs one pipeline to completion, delivering to a console
// on out. Flag values in opts override cfg.
func generateProject(ctx context.Context, cfg *config.Config, opts generateOptions, out io.Writer, log *slog.Logger) (pipeline.Result, error) {
	if opts.Engine != "" {
		cfg.LLM.Engine = opts.Engine
	}
	if opts.BaseDir != "" {
		cfg.App.BaseDir = opts.BaseDir
	}
	if opts.NoPublish {
		cfg.GitHub.Token = ""
	}
	if err := cfg.Validate(config.ModeGenerate); err != nil {
		return pipeline.Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := pipeline.ValidateProjectName(opts.Name); err != nil {
		return pipeline.Result{}, err
	}
	if !opts.NoPublish {
		for _, w := range cfg.Warnings() {
			log.Warn(w)
		}
	}

	eng, err := newEngine(cfg, log)
	if err != nil {
		return pipeline.Result{}, err
	}
	queue, closeQueue, err := newQueue(ctx, cfg, log)
	if err != nil {
		return pipeline.Result{}, err
	}
	defer closeQueue()

	pub, err := newPublisher(cfg, log)
	if err != nil {
		return pipeline.Result{}, err
	}
	p, err := newPipeline(cfg, eng, queue, pub, log)
	if err != nil {
		return pipeline.Result{}, err
	}
	runner := pipeline.NewRunner(p, log)

	console := output.NewConsole(out)
	consumer := delivery.NewConsumer(queue, console, cfg.Delivery.PollInterval, log)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		_ = consumer.Run(consumerCtx)
	}()

	h, err := runner.Submit(ctx, pipeline.Request{
		ProjectName:     opts.Name,
		Description:     opts.Description,
		StatusMessageID: console.Status(msgStarted),
	})
	if err != nil {
		stopConsumer()
		<-consumerDone
		return pipeline.Result{}, err
	}

	result := h.Wait()
	// Run performs a final drain after cancellation, so every intent the
	// pipeline pushed is printed before returning.
	stopConsumer()
	<-consumerDone

	if result.State != pipeline.StateCompleted && result.Err != nil {
		console.ShowError(result.Err.Error())
	}
	return result, nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jywlabs/scaffold/internal/config"
	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/logger"
	"github.com/jywlabs/scaffold/internal/pipeline"
	"github.com/jywlabs/scaffold/internal/transport/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot.

Users start a project with /new, answer with a project name and a
description, and receive each generated document, the ZIP archive and a
link to the GitHub repository as the pipeline progresses.

Health and Prometheus metrics are served on metrics.addr (default :9464)
at /healthz and /metrics.

Examples:
  scaffold serve
  scaffold serve --config /etc/scaffold.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(config.ModeServe); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopTracing, err := initTracing(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	queue, closeQueue, err := newQueue(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeQueue()

	pub, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, eng, queue, pub, log)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(p, log)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	log.Info("authorized", "bot", api.Self.UserName, "engine", eng.Name(), "delivery", cfg.Delivery.Backend)

	transport := telegram.NewTransport(api)
	bot := telegram.NewBot(telegram.BotConfig{
		Updates:     api,
		Transport:   transport,
		Consumer:    delivery.NewConsumer(queue, transport, cfg.Delivery.PollInterval, log),
		Runner:      runner,
		PollTimeout: cfg.Telegram.PollTimeout,
		Logger:      log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	if cfg.Metrics.Enabled {
		gin.SetMode(gin.ReleaseMode)
		g.Go(func() error {
			return serveHTTP(gctx, cfg.Metrics.Addr, newRouter(runner), log)
		})
	}

	err = g.Wait()
	if n := runner.Active(); n > 0 {
		log.Warn("exiting with runs in progress", "active_runs", n)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jywlabs/scaffold/internal/delivery"
	"github.com/jywlabs/scaffold/internal/pipeline"
)

// Replies sent by the front end.
const (
	msgWelcome        = "Welcome to CreateAIAppBot!\nUse /new to start building your project."
	msgAskName        = "What is your project name?"
	msgAskDescription = "Describe what your app does:"
	msgUseNew         = "Use /new to start building your project."
	msgUnknownCommand = "Unknown command. Use /new to start building your project."
	msgInvalidName    = "A project name must be a single folder name without slashes and must not end in .zip. Please choose another project name:"
	msgBusy           = "⏳ A project named %q is already being generated. Try again when it is finished."
	msgProcessing     = "🔄 Processing your request. This may take a few minutes...\n\n" +
		"I'll generate a complete project based on your description, including:\n" +
		"- Product Requirements Document (PRD)\n" +
		"- High-Level Design (HLD)\n" +
		"- API Specifications\n" +
		"- Database Schema\n" +
		"- Code scaffolding\n" +
		"- GitHub repository"
)

// UpdateSource delivers incoming updates. *tgbotapi.BotAPI implements it.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Submitter starts pipeline runs.
type Submitter interface {
	Submit(ctx context.Context, req pipeline.Request) (*pipeline.Handle, error)
}

type step int

const (
	stepProjectName step = iota + 1
	stepDescription
)

type session struct {
	step        step
	projectName string
}

// Bot owns every Telegram interaction: it answers commands, collects a
// project name and description per chat, and runs the delivery consumer on
// the same goroutine so chat I/O never happens concurrently.
type Bot struct {
	updates     UpdateSource
	transport   delivery.Transport
	consumer    *delivery.Consumer
	runner      Submitter
	pollTimeout int
	logger      *slog.Logger

	// sessions is only touched by the Run goroutine.
	sessions map[int64]*session
}

// BotConfig wires a Bot.
type BotConfig struct {
	Updates     UpdateSource
	Transport   delivery.Transport
	Consumer    *delivery.Consumer
	Runner      Submitter
	PollTimeout int
	Logger      *slog.Logger
}

// NewBot creates the front end.
func NewBot(cfg BotConfig) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bot{
		updates:     cfg.Updates,
		transport:   cfg.Transport,
		consumer:    cfg.Consumer,
		runner:      cfg.Runner,
		pollTimeout: cfg.PollTimeout,
		logger:      cfg.Logger,
		sessions:    make(map[int64]*session),
	}
}

// Run processes updates and drains the delivery queue until ctx is done.
// The first drain happens immediately; later drains follow the consumer's
// interval. A final drain runs before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.updates.GetUpdatesChan(u)
	defer b.updates.StopReceivingUpdates()

	b.consumer.DrainOnce(ctx)

	ticker := time.NewTicker(b.consumer.Interval())
	defer ticker.Stop()

	b.logger.Info("bot running", "drain_interval", b.consumer.Interval())
	for {
		select {
		case <-ctx.Done():
			b.consumer.FinalDrain(ctx)
			b.logger.Info("bot stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				b.consumer.FinalDrain(ctx)
				return errors.New("update channel closed")
			}
			b.HandleUpdate(ctx, upd)
		case <-ticker.C:
			b.consumer.DrainOnce(ctx)
		}
	}
}

// HandleUpdate advances the conversation for one incoming message.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.reply(ctx, chatID, msgWelcome)
		case "new":
			b.sessions[chatID] = &session{step: stepProjectName}
			b.reply(ctx, chatID, msgAskName)
		default:
			b.reply(ctx, chatID, msgUnknownCommand)
		}
		return
	}

	s, ok := b.sessions[chatID]
	if !ok {
		b.reply(ctx, chatID, msgUseNew)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch s.step {
	case stepProjectName:
		if err := pipeline.ValidateProjectName(text); err != nil {
			b.reply(ctx, chatID, msgInvalidName)
			return
		}
		s.projectName = text
		s.step = stepDescription
		b.reply(ctx, chatID, msgAskDescription)
	case stepDescription:
		delete(b.sessions, chatID)
		b.submit(ctx, chatID, s.projectName, text)
	}
}

func (b *Bot) submit(ctx context.Context, chatID int64, name, description string) {
	statusID, err := b.transport.SendMessage(ctx, chatID, msgProcessing, delivery.MessageOptions{})
	if err != nil {
		b.logger.Warn("failed to send status message", "chat_id", chatID, "error", err)
		return
	}

	h, err := b.runner.Submit(ctx, pipeline.Request{
		ProjectName:     name,
		Description:     description,
		ChatID:          chatID,
		StatusMessageID: statusID,
	})
	if err != nil {
		text := fmt.Sprintf("❌ Error generating project: %v", err)
		if errors.Is(err, pipeline.ErrProjectBusy) {
			text = fmt.Sprintf(msgBusy, name)
		}
		if eerr := b.transport.EditMessage(ctx, chatID, statusID, text); eerr != nil {
			b.logger.Warn("failed to report rejected request", "chat_id", chatID, "error", eerr)
		}
		return
	}
	b.logger.Info("generation started", "chat_id", chatID, "project", name, "run_id", h.RunID)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.transport.SendMessage(ctx, chatID, text, delivery.MessageOptions{}); err != nil {
		b.logger.Warn("failed to reply", "chat_id", chatID, "error", err)
	}
}

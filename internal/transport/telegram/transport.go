// Package telegram connects the delivery consumer and the conversation front
// end to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jywlabs/scaffold/internal/delivery"
)

// Sender is the part of *tgbotapi.BotAPI used to perform chat actions.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Transport implements delivery.Transport on the Bot API. The API calls are
// not cancellable; ctx is only checked before each call.
type Transport struct {
	api Sender
}

// NewTransport creates a transport sending through api.
func NewTransport(api Sender) *Transport {
	return &Transport{api: api}
}

// EditMessage replaces the text of messageID.
func (t *Transport) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("failed to edit message %d: %w", messageID, err)
	}
	return nil
}

// SendMessage sends text, optionally with a parse mode and a single URL
// button.
func (t *Transport) SendMessage(ctx context.Context, chatID int64, text string, opts delivery.MessageOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	if opts.Link != nil {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(opts.Link.Label, opts.Link.URL),
			),
		)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

// SendDocument uploads the file at path.
func (t *Transport) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := t.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send document %s: %w", path, err)
	}
	return nil
}

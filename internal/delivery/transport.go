package delivery

import (
	"context"
	"fmt"
)

// MessageOptions are optional parameters of SendMessage.
type MessageOptions struct {
	ParseMode string
	Link      *ActionLink
}

// Transport performs chat actions. Implementations are called from a single
// goroutine and need not be safe for concurrent use.
type Transport interface {
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	// SendMessage returns the ID of the sent message.
	SendMessage(ctx context.Context, chatID int64, text string, opts MessageOptions) (int, error)
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
}

// Dispatch executes one intent against t.
func Dispatch(ctx context.Context, t Transport, in Intent) error {
	switch v := in.(type) {
	case EditStatus:
		return t.EditMessage(ctx, v.ChatID, v.MessageID, v.Text)
	case SendText:
		_, err := t.SendMessage(ctx, v.ChatID, v.Text, MessageOptions{})
		return err
	case SendFile:
		return t.SendDocument(ctx, v.ChatID, v.Path, v.Caption)
	case SendFinal:
		_, err := t.SendMessage(ctx, v.ChatID, v.Text, MessageOptions{ParseMode: v.ParseMode, Link: v.Link})
		return err
	default:
		return fmt.Errorf("%w: %T", ErrUnknownIntent, in)
	}
}

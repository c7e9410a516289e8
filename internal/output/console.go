// Package output renders delivery intents and run summaries on a terminal.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jywlabs/scaffold/internal/delivery"
)

// Console is a delivery.Transport that prints to a writer instead of a chat.
// It is what `scaffold generate` delivers to.
type Console struct {
	out io.Writer

	mu       sync.Mutex
	nextID   int
	messages map[int]string
}

// NewConsole creates a console transport writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, messages: make(map[int]string)}
}

// EditMessage prints the new status. Editing an unknown message fails, as
// it would on a chat service.
func (c *Console) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.messages[messageID]; !ok {
		return fmt.Errorf("message %d not found", messageID)
	}
	c.messages[messageID] = text
	fmt.Fprintf(c.out, "%s %s\n", StyleInfo.Render("   ~"), text)
	return nil
}

// SendMessage prints text. Messages with an action link are rendered as the
// final summary box.
func (c *Console) SendMessage(ctx context.Context, chatID int64, text string, opts delivery.MessageOptions) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.messages[id] = text

	if opts.Link == nil {
		style := StyleMuted
		if strings.HasPrefix(text, "❌") {
			style = StyleError
		}
		fmt.Fprintf(c.out, "   %s\n", style.Render(text))
		return id, nil
	}

	body := text
	if opts.ParseMode == delivery.ParseModeMarkdown {
		body = stripMarkdown(body)
	}
	body += "\n\n" + StyleAccent.Render(opts.Link.Label) + " " + opts.Link.URL
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, SuccessBox().Render(body))
	return id, nil
}

// SendDocument prints the caption and file size. The file must exist.
func (c *Console) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "   %s %s\n", StyleSuccess.Render(caption),
		StyleMuted.Render(fmt.Sprintf("(%s, %s)", filepath.Base(path), formatSize(info.Size()))))
	return nil
}

// Status prints the initial status message and returns its ID for
// Request.StatusMessageID.
func (c *Console) Status(text string) int {
	id, _ := c.SendMessage(context.Background(), 0, text, delivery.MessageOptions{})
	return id
}

// ShowError prints a boxed error.
func (c *Console) ShowError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, ErrorBox().Render(StyleError.Render("[!!] Error")+"\n"+msg))
}

// stripMarkdown removes the emphasis and code markers used in the final
// message and unescapes escaped marker characters.
func stripMarkdown(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			if !strings.ContainsRune("_*`[", r) {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*' || r == '`':
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

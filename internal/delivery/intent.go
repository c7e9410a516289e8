// Package delivery carries outbound chat actions from pipeline goroutines to
// the single goroutine that owns the chat transport.
package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Intent kinds.
const (
	KindEditStatus = "edit_status"
	KindSendText   = "send_text"
	KindSendFile   = "send_file"
	KindSendFinal  = "send_final"
)

// ParseModeMarkdown asks the transport to render Markdown.
const ParseModeMarkdown = "Markdown"

// markdownEscaper escapes the characters that open an entity in Telegram's
// legacy Markdown mode.
var markdownEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

// EscapeMarkdown makes s safe to place outside an entity in a
// ParseModeMarkdown message.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// EscapeMarkdownCode makes s safe inside a `code` entity, where escapes are
// not processed and only a backtick can end the entity early.
func EscapeMarkdownCode(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}

// ErrUnknownIntent is returned when decoding an unrecognized intent kind.
var ErrUnknownIntent = errors.New("unknown delivery intent")

// Intent is one outbound chat action. The set of implementations is closed:
// EditStatus, SendText, SendFile and SendFinal.
type Intent interface {
	Kind() string
	Chat() int64
	intent()
}

// EditStatus replaces the text of an existing message.
type EditStatus struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Text      string `json:"text"`
}

// SendText sends a plain message.
type SendText struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// SendFile uploads a local file as a document.
type SendFile struct {
	ChatID  int64  `json:"chat_id"`
	Path    string `json:"path"`
	Caption string `json:"caption"`
}

// ActionLink is an inline button opening URL.
type ActionLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SendFinal sends the formatted completion message with an action link.
type SendFinal struct {
	ChatID    int64       `json:"chat_id"`
	Text      string      `json:"text"`
	ParseMode string      `json:"parse_mode,omitempty"`
	Link      *ActionLink `json:"link,omitempty"`
}

func (EditStatus) Kind() string { return KindEditStatus }
func (SendText) Kind() string   { return KindSendText }
func (SendFile) Kind() string   { return KindSendFile }
func (SendFinal) Kind() string  { return KindSendFinal }

func (i EditStatus) Chat() int64 { return i.ChatID }
func (i SendText) Chat() int64   { return i.ChatID }
func (i SendFile) Chat() int64   { return i.ChatID }
func (i SendFinal) Chat() int64  { return i.ChatID }

func (EditStatus) intent() {}
func (SendText) intent()   {}
func (SendFile) intent()   {}
func (SendFinal) intent()  {}

type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes an intent with its kind tag.
func Encode(in Intent) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s intent: %w", in.Kind(), err)
	}
	return json.Marshal(envelope{Kind: in.Kind(), Payload: payload})
}

// Decode is the inverse of Encode.
func Decode(data []byte) (Intent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode intent: %w", err)
	}

	var (
		in  Intent
		err error
	)
	switch env.Kind {
	case KindEditStatus:
		var v EditStatus
		err = json.Unmarshal(env.Payload, &v)
		in = v
	case KindSendText:
		var v SendText
		err = json.Unmarshal(env.Payload, &v)
		in = v
	case KindSendFile:
		var v SendFile
		err = json.Unmarshal(env.Payload, &v)
		in = v
	case KindSendFinal:
		var v SendFinal
		err = json.Unmarshal(env.Payload, &v)
		in = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, env.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s intent: %w", env.Kind, err)
	}
	return in, nil
}

package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrLookupFailed means the getChat call itself failed.
	ErrLookupFailed = errors.New("chat lookup failed")
	// ErrMalformedResponse means a response body or its result could not be decoded.
	ErrMalformedResponse = errors.New("malformed telegram response")
	// ErrNoPinnedMessage means the chat has no pinned message with an id.
	ErrNoPinnedMessage = errors.New("no pinned message")
)

// Response is the Bot API envelope.
//
// A failed call is represented as OK=false with Error set; ErrorCode and
// Description are filled in when Telegram returned them.
type Response struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Error       string          `json:"error,omitempty"`

	raw []byte
}

func failure(err error, body []byte) Response {
	r := Response{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &r)
		r.Result = nil
	}
	r.OK = false
	r.Error = err.Error()
	return r
}

// JSON returns the response body as received, or the encoded failure sentinel.
func (r Response) JSON() []byte {
	if len(r.raw) > 0 {
		return r.raw
	}
	b, err := json.Marshal(r)
	if err != nil {
		return []byte(`{"ok":false}`)
	}
	return b
}

// Indented returns JSON() indented by two spaces.
func (r Response) Indented() []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.JSON(), "", "  "); err != nil {
		return r.JSON()
	}
	return buf.Bytes()
}

func (r Response) errorText() string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Description != "":
		return r.Description
	default:
		return "ok=false"
	}
}

// PinnedMessageID extracts result.pinned_message.message_id from a getChat response.
func PinnedMessageID(r Response) (int, error) {
	if !r.OK {
		return 0, fmt.Errorf("%w: %s", ErrLookupFailed, r.errorText())
	}
	res := bytes.TrimSpace(r.Result)
	if len(res) == 0 || bytes.Equal(res, []byte("null")) {
		return 0, fmt.Errorf("%w: getChat result is empty", ErrMalformedResponse)
	}
	var chat struct {
		PinnedMessage *tele.Message `json:"pinned_message"`
	}
	if err := json.Unmarshal(res, &chat); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if chat.PinnedMessage == nil || chat.PinnedMessage.ID == 0 {
		return 0, ErrNoPinnedMessage
	}
	return chat.PinnedMessage.ID, nil
}

// MessageID extracts result.message_id from a sendMessage or editMessageText response.
func MessageID(r Response) (int, error) {
	if !r.OK {
		return 0, fmt.Errorf("telegram call failed: %s", r.errorText())
	}
	var msg tele.Message
	if err := json.Unmarshal(r.Result, &msg); err != nil || msg.ID == 0 {
		return 0, fmt.Errorf("%w: result has no message_id", ErrMalformedResponse)
	}
	return msg.ID, nil
}

// Truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	rs := []rune(s)
	if limit <= 0 || len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(rs[:limit-1]) + "…"
}

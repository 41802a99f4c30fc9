package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flashnotify/internal/transport/telegram"
	logx "flashnotify/pkg/logx"
)

var (
	// ErrEditFailed wraps a failed editMessageText call.
	ErrEditFailed = errors.New("edit pinned message failed")
	// ErrSendFailed wraps a failed sendMessage call.
	ErrSendFailed = errors.New("send message failed")
)

// API is the subset of the Bot API the notifier uses.
type API interface {
	GetChat(ctx context.Context) (telegram.Response, error)
	EditMessageText(ctx context.Context, messageID int, text string) (telegram.Response, error)
	SendMessage(ctx context.Context, text string) (telegram.Response, error)
}

type Config struct {
	SiteName string
	Links    []Link
	Location *time.Location
	// SendWhenUnpinned posts a new message when the chat has no pinned
	// message instead of failing the lookup.
	SendWhenUnpinned bool
}

// Notifier composes and delivers announcements.
type Notifier struct {
	cfg Config
	api API
	log logx.Logger
}

func New(cfg Config, api API, log logx.Logger) *Notifier {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{cfg: cfg, api: api, log: log.With(logx.String("comp", "notifier"))}
}

// Compose renders a using the notifier's site name, links and timezone.
func (n *Notifier) Compose(a Announcement) string {
	return Compose(n.cfg.SiteName, n.cfg.Links, n.cfg.Location, a)
}

// PinnedMessageID looks up the chat and returns its pinned message id.
// The returned Response is the getChat response (or its failure sentinel).
func (n *Notifier) PinnedMessageID(ctx context.Context) (int, telegram.Response, error) {
	resp, err := n.api.GetChat(ctx)
	if err != nil {
		return 0, resp, fmt.Errorf("%w: %w", telegram.ErrLookupFailed, err)
	}
	id, err := telegram.PinnedMessageID(resp)
	if err != nil {
		return 0, resp, err
	}
	return id, resp, nil
}

// Announce edits the pinned message with the composed announcement and
// returns the edit response.
//
// Lookup failures are returned as-is (wrapping telegram.ErrLookupFailed,
// telegram.ErrMalformedResponse or telegram.ErrNoPinnedMessage) unless the
// chat simply has no pin and SendWhenUnpinned is set, in which case a new
// message is posted. Delivery failures wrap ErrEditFailed / ErrSendFailed and
// still return the failure Response.
func (n *Notifier) Announce(ctx context.Context, a Announcement) (telegram.Response, error) {
	text := n.Compose(a)

	id, lookup, err := n.PinnedMessageID(ctx)
	if err != nil {
		if errors.Is(err, telegram.ErrNoPinnedMessage) && n.cfg.SendWhenUnpinned {
			n.log.Info("chat has no pinned message; sending a new announcement")
			return n.Send(ctx, text)
		}
		n.log.Error("pinned message lookup failed", logx.Err(err))
		return lookup, err
	}

	n.log.Debug("editing pinned message", logx.Int("message_id", id))
	resp, err := n.api.EditMessageText(ctx, id, text)
	if err != nil {
		return resp, fmt.Errorf("%w: %w", ErrEditFailed, err)
	}
	n.log.Info("pinned message updated", logx.Int("message_id", id))
	return resp, nil
}

// Send posts text as a new message.
func (n *Notifier) Send(ctx context.Context, text string) (telegram.Response, error) {
	resp, err := n.api.SendMessage(ctx, text)
	if err != nil {
		return resp, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	if id, err := telegram.MessageID(resp); err == nil {
		n.log.Info("announcement sent", logx.Int("message_id", id))
	}
	return resp, nil
}

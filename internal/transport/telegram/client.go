// Package telegram is a minimal Bot API client for the calls the notifier makes.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	logx "flashnotify/pkg/logx"
)

// TextLimit is the maximum length of a message text accepted by the Bot API.
const TextLimit = 4096

type Config struct {
	Token  string
	ChatID string
	// APIURL defaults to tele.DefaultApiURL.
	APIURL string
	// Timeout bounds each call (default 10s).
	Timeout time.Duration
}

// Client makes single-attempt Bot API calls against one chat.
type Client struct {
	chatID string
	bot    *tele.Bot
	log    logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, errors.New("telegram chat id is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	url := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if url == "" {
		url = tele.DefaultApiURL
	}
	// Offline skips the getMe round trip; this client never polls.
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     url,
		Client:  &http.Client{Timeout: timeout},
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		chatID: strings.TrimSpace(cfg.ChatID),
		bot:    b,
		log:    log.With(logx.String("comp", "telegram")),
	}, nil
}

// GetChat fetches the target chat, including its pinned message.
func (c *Client) GetChat(ctx context.Context) (Response, error) {
	return c.call(ctx, "getChat", map[string]any{
		"chat_id": c.chatID,
	})
}

// EditMessageText replaces the text of messageID using Markdown parse mode.
func (c *Client) EditMessageText(ctx context.Context, messageID int, text string) (Response, error) {
	return c.call(ctx, "editMessageText", map[string]any{
		"chat_id":    c.chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": tele.ModeMarkdown,
	})
}

// SendMessage posts a new Markdown message to the target chat.
func (c *Client) SendMessage(ctx context.Context, text string) (Response, error) {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": tele.ModeMarkdown,
	})
}

// SendLog posts a plain-text message to chatID. It implements logx.Sender and
// never logs, so a failing log chat can't feed back into the log sink.
func (c *Client) SendLog(ctx context.Context, chatID, text string) error {
	_, err := c.do(ctx, "sendMessage", map[string]any{
		"chat_id":                  chatID,
		"text":                     Truncate(text, TextLimit),
		"disable_web_page_preview": true,
	})
	return err
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, method, payload)
	if err != nil {
		c.log.Warn("telegram request failed",
			logx.String("method", method),
			logx.Int("error_code", resp.ErrorCode),
			logx.Duration("took", time.Since(start)),
			logx.Err(err),
		)
		return resp, err
	}
	c.log.Debug("telegram request ok", logx.String("method", method), logx.Duration("took", time.Since(start)))
	return resp, nil
}

// do performs one call. On failure the returned Response is the failure
// sentinel ({"ok": false, "error": ...}) carrying the Bot API error code and
// description when the body had them.
func (c *Client) do(ctx context.Context, method string, payload map[string]any) (Response, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return failure(err, nil), fmt.Errorf("telegram %s: %w", method, err)
		}
	}

	data, err := c.bot.Raw(method, payload)
	if err != nil {
		return failure(err, data), fmt.Errorf("telegram %s: %w", method, err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		return failure(err, nil), fmt.Errorf("telegram %s: %w", method, err)
	}
	resp.raw = append([]byte(nil), data...)
	return resp, nil
}

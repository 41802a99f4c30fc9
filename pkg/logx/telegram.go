package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Sender delivers a log line to a Telegram chat.
type Sender interface {
	SendLog(ctx context.Context, chatID, text string) error
}

// telegramSink forwards warn+ log lines to a Telegram chat.
// Writes never block: lines are dropped when the queue is full or the limiter says no.
type telegramSink struct {
	chatID   string
	minLevel zerolog.Level
	limiter  *rate.Limiter

	mu      sync.Mutex
	closed  bool
	started bool
	queue   chan string
	done    chan struct{}
	cancel  context.CancelFunc
}

func newTelegramSink(chatID string, minLevel zerolog.Level, ratePerSec int) *telegramSink {
	rps := max(1, ratePerSec)
	return &telegramSink{
		chatID:   chatID,
		minLevel: minLevel,
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		queue:    make(chan string, 64),
		done:     make(chan struct{}),
	}
}

func (t *telegramSink) start(sender Sender) {
	if sender == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.closed {
		return
	}
	t.started = true
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.worker(ctx, sender)
}

func (t *telegramSink) worker(ctx context.Context, sender Sender) {
	defer close(t.done)
	for msg := range t.queue {
		if ctx.Err() != nil {
			continue
		}
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = sender.SendLog(sctx, t.chatID, msg)
		cancel()
	}
}

// close stops accepting lines and waits up to timeout for queued lines to be delivered.
func (t *telegramSink) close(timeout time.Duration) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	started := t.started
	cancel := t.cancel
	t.mu.Unlock()

	if !started {
		return
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.done:
	case <-timer.C:
		cancel()
		<-t.done
	}
	cancel()
}

func (t *telegramSink) Write(p []byte) (int, error) {
	return t.WriteLevel(zerolog.InfoLevel, p)
}

func (t *telegramSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < t.minLevel || !t.limiter.Allow() {
		return len(p), nil
	}
	msg := formatTelegramJSON(p)
	if msg == "" {
		return len(p), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return len(p), nil
	}
	select {
	case t.queue <- msg:
	default:
		// drop
	}
	return len(p), nil
}

// formatTelegramJSON renders a zerolog JSON line as a compact plain-text message.
func formatTelegramJSON(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), 3500)
	}

	lvl, _ := m["level"].(string)
	msg, _ := m["message"].(string)

	var b strings.Builder
	if lvl != "" {
		b.WriteString("[")
		b.WriteString(strings.ToUpper(lvl))
		b.WriteString("] ")
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "time", "level", "message":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n- ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(truncate(fmt.Sprint(m[k]), 600))
	}

	return truncate(b.String(), 3500)
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	if maxN < 10 {
		return s[:maxN]
	}
	return s[:maxN-3] + "..."
}

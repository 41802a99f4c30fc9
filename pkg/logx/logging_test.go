package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) SendLog(ctx context.Context, chatID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, chatID+"|"+text)
	return nil
}

func (r *recordingSender) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func TestFormatTelegramJSON(t *testing.T) {
	t.Parallel()
	line := []byte(`{"level":"warn","time":"x","message":"lookup failed","caller":"app.go:10","err":"boom"}` + "\n")
	got := formatTelegramJSON(line)
	want := "[WARN] lookup failed\n- caller=app.go:10\n- err=boom"
	if got != want {
		t.Fatalf("formatTelegramJSON = %q, want %q", got, want)
	}

	if got := formatTelegramJSON([]byte("  plain text \n")); got != "plain text" {
		t.Fatalf("non-json line = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in, zerolog.InfoLevel); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWriterEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("comp", "test"))
	log.Info("hello", Int("n", 3))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if m["message"] != "hello" || m["comp"] != "test" || m["n"] != float64(3) {
		t.Fatalf("unexpected log line: %v", m)
	}
}

func TestTelegramSinkDeliversAndDrainsOnClose(t *testing.T) {
	sink := newTelegramSink("-100", zerolog.WarnLevel, 10)
	sender := &recordingSender{}
	sink.start(sender)

	_, _ = sink.WriteLevel(zerolog.InfoLevel, []byte(`{"level":"info","message":"skip"}`))
	_, _ = sink.WriteLevel(zerolog.ErrorLevel, []byte(`{"level":"error","message":"keep"}`))
	sink.close(time.Second)

	// writes after close are dropped without panicking
	_, _ = sink.WriteLevel(zerolog.ErrorLevel, []byte(`{"level":"error","message":"late"}`))

	got := sender.messages()
	if len(got) != 1 || got[0] != "-100|[ERROR] keep" {
		t.Fatalf("sent = %q", got)
	}
}

func TestJournalWriterMapsFields(t *testing.T) {
	t.Parallel()
	var gotMsg string
	var gotPri journal.Priority
	var gotVars map[string]string
	w := &journalWriter{
		identifier: "flashnotify",
		send: func(msg string, pri journal.Priority, vars map[string]string) error {
			gotMsg, gotPri, gotVars = msg, pri, vars
			return nil
		},
	}
	line := []byte(`{"level":"warn","message":"edit failed","chat.id":"-100","_private":"x"}`)
	if _, err := w.WriteLevel(zerolog.WarnLevel, line); err != nil {
		t.Fatalf("WriteLevel: %v", err)
	}
	if gotMsg != "edit failed" || gotPri != journal.PriWarning {
		t.Fatalf("msg=%q pri=%v", gotMsg, gotPri)
	}
	if gotVars["CHAT_ID"] != "-100" || gotVars["PRIVATE"] != "x" || gotVars["SYSLOG_IDENTIFIER"] != "flashnotify" {
		t.Fatalf("vars = %v", gotVars)
	}
	if strings.Contains(strings.Join(keys(gotVars), ","), "LEVEL") {
		t.Fatalf("level should not be forwarded: %v", gotVars)
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

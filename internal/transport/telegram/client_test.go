package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	logx "flashnotify/pkg/logx"
)

type apiCall struct {
	Method  string
	Payload map[string]any
}

// fakeAPI is a tiny Bot API stand-in keyed by method name.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []apiCall
	replies map[string]func(w http.ResponseWriter)
}

func newFakeAPI(t *testing.T, replies map[string]func(w http.ResponseWriter)) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{replies: replies}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)
		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Payload: payload})
		f.mu.Unlock()
		if !strings.HasPrefix(r.URL.Path, "/botTOKEN/") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
			return
		}
		reply, ok := f.replies[method]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found: method"}`)
			return
		}
		reply(w)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) snapshot() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func jsonReply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{Token: "TOKEN", ChatID: "-1001", APIURL: url, Timeout: 2 * time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{ChatID: "1"}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := New(Config{Token: "t"}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty chat id")
	}
}

func TestGetChatPinnedMessage(t *testing.T) {
	t.Parallel()
	api, srv := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"getChat": jsonReply(200, `{"ok":true,"result":{"id":-1001,"type":"channel","pinned_message":{"message_id":77,"date":1,"text":"old"}}}`),
	})
	c := newTestClient(t, srv.URL)

	resp, err := c.GetChat(context.Background())
	if err != nil {
		t.Fatalf("GetChat: %v", err)
	}
	id, err := PinnedMessageID(resp)
	if err != nil {
		t.Fatalf("PinnedMessageID: %v", err)
	}
	if id != 77 {
		t.Fatalf("id = %d, want 77", id)
	}
	calls := api.snapshot()
	if len(calls) != 1 || calls[0].Method != "getChat" || calls[0].Payload["chat_id"] != "-1001" {
		t.Fatalf("calls = %+v", calls)
	}
	if len(calls[0].Payload) != 1 {
		t.Fatalf("getChat payload should only carry chat_id: %v", calls[0].Payload)
	}
}

func TestPinnedMessageIDFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		resp Response
		want error
	}{
		{name: "not ok", resp: Response{OK: false, Error: "boom"}, want: ErrLookupFailed},
		{name: "no result", resp: Response{OK: true}, want: ErrMalformedResponse},
		{name: "null result", resp: Response{OK: true, Result: json.RawMessage(`null`)}, want: ErrMalformedResponse},
		{name: "array result", resp: Response{OK: true, Result: json.RawMessage(`[1,2]`)}, want: ErrMalformedResponse},
		{name: "no pin", resp: Response{OK: true, Result: json.RawMessage(`{"id":1,"type":"channel"}`)}, want: ErrNoPinnedMessage},
		{name: "pin without id", resp: Response{OK: true, Result: json.RawMessage(`{"pinned_message":{}}`)}, want: ErrNoPinnedMessage},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := PinnedMessageID(tt.resp); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEditMessageTextReturnsBody(t *testing.T) {
	t.Parallel()
	body := `{"ok":true,"result":{"message_id":77,"date":1,"edit_date":2,"text":"new"}}`
	api, srv := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"editMessageText": jsonReply(200, body),
	})
	c := newTestClient(t, srv.URL)

	resp, err := c.EditMessageText(context.Background(), 77, "*new*")
	if err != nil {
		t.Fatalf("EditMessageText: %v", err)
	}
	if string(resp.JSON()) != body {
		t.Fatalf("JSON = %s, want %s", resp.JSON(), body)
	}
	if id, err := MessageID(resp); err != nil || id != 77 {
		t.Fatalf("MessageID = %d, %v", id, err)
	}

	p := api.snapshot()[0].Payload
	if p["chat_id"] != "-1001" || p["message_id"] != float64(77) || p["text"] != "*new*" || p["parse_mode"] != "Markdown" {
		t.Fatalf("payload = %v", p)
	}
}

func TestSendMessagePayload(t *testing.T) {
	t.Parallel()
	api, srv := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"sendMessage": jsonReply(200, `{"ok":true,"result":{"message_id":5,"date":1}}`),
	})
	c := newTestClient(t, srv.URL)
	if _, err := c.SendMessage(context.Background(), "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	p := api.snapshot()[0].Payload
	if p["text"] != "hello" || p["parse_mode"] != "Markdown" {
		t.Fatalf("payload = %v", p)
	}
}

func TestCallFailureSentinel(t *testing.T) {
	t.Parallel()
	_, srv := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"editMessageText": jsonReply(400, `{"ok":false,"error_code":400,"description":"Bad Request: message to edit not found"}`),
		"getChat":         jsonReply(502, `<html>bad gateway</html>`),
	})
	c := newTestClient(t, srv.URL)

	resp, err := c.EditMessageText(context.Background(), 1, "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if resp.OK || resp.Error == "" || resp.ErrorCode != 400 {
		t.Fatalf("resp = %+v", resp)
	}
	var sentinel map[string]any
	if err := json.Unmarshal(resp.JSON(), &sentinel); err != nil {
		t.Fatalf("sentinel is not JSON: %v", err)
	}
	if sentinel["ok"] != false || sentinel["error"] == nil {
		t.Fatalf("sentinel = %v", sentinel)
	}

	resp, err = c.GetChat(context.Background())
	if err == nil || resp.OK {
		t.Fatalf("expected failure for non-JSON 502, got %+v, %v", resp, err)
	}
	if _, err := PinnedMessageID(resp); !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("PinnedMessageID err = %v", err)
	}
}

func TestCallHonoursCancelledContext(t *testing.T) {
	t.Parallel()
	api, srv := newFakeAPI(t, map[string]func(http.ResponseWriter){})
	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.GetChat(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n := len(api.snapshot()); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

func TestSendLogIsPlainText(t *testing.T) {
	t.Parallel()
	api, srv := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"sendMessage": jsonReply(200, `{"ok":true,"result":{"message_id":9,"date":1}}`),
	})
	c := newTestClient(t, srv.URL)
	if err := c.SendLog(context.Background(), "-200", "[WARN] x_y"); err != nil {
		t.Fatalf("SendLog: %v", err)
	}
	p := api.snapshot()[0].Payload
	if p["chat_id"] != "-200" {
		t.Fatalf("chat_id = %v", p["chat_id"])
	}
	if _, ok := p["parse_mode"]; ok {
		t.Fatalf("log lines must not use a parse mode: %v", p)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	if got := Truncate("héllo", 10); got != "héllo" {
		t.Fatalf("Truncate short = %q", got)
	}
	if got := Truncate("héllo", 3); got != "hé…" {
		t.Fatalf("Truncate = %q", got)
	}
}

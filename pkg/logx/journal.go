package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter sends zerolog JSON lines to journald as structured entries.
// Event fields become upper-cased journal fields (e.g. caller -> CALLER).
type journalWriter struct {
	identifier string
	send       func(msg string, pri journal.Priority, vars map[string]string) error
}

func newJournalWriter(identifier string) (*journalWriter, bool) {
	if !journal.Enabled() {
		return nil, false
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		identifier = "flashnotify"
	}
	return &journalWriter{identifier: identifier, send: journal.Send}, true
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	msg, vars := journalEntry(p)
	vars["SYSLOG_IDENTIFIER"] = w.identifier
	if err := w.send(msg, journalPriority(level), vars); err != nil {
		return 0, err
	}
	return len(p), nil
}

func journalEntry(p []byte) (string, map[string]string) {
	vars := map[string]string{}
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &m); err != nil {
		return strings.TrimSpace(string(p)), vars
	}
	msg, _ := m["message"].(string)
	for k, v := range m {
		if k == "message" || k == "level" || k == "time" {
			continue
		}
		if name := journalFieldName(k); name != "" {
			vars[name] = fmt.Sprint(v)
		}
	}
	return msg, vars
}

// journalFieldName maps a zerolog key to a valid journal field name:
// upper-case ASCII letters, digits and underscores, not starting with an underscore.
func journalFieldName(k string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(k) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return ""
	}
	return name
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch {
	case level >= zerolog.ErrorLevel:
		return journal.PriErr
	case level == zerolog.WarnLevel:
		return journal.PriWarning
	case level == zerolog.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

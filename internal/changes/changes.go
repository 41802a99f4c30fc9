// Package changes reads the latest change summary from version control.
package changes

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	logx "flashnotify/pkg/logx"
)

// Fallback is returned when the log command fails.
const Fallback = "No recent changes"

// Option configures a Reader.
type Option func(*Reader)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(rd *Reader) {
		if r != nil {
			rd.run = r
		}
	}
}

// WithDir sets the working directory of the log command.
func WithDir(dir string) Option {
	return func(rd *Reader) { rd.dir = dir }
}

// WithTimeout bounds the log command. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(rd *Reader) { rd.timeout = d }
}

// WithFallback overrides the summary used when the command fails.
func WithFallback(s string) Option {
	return func(rd *Reader) {
		if s != "" {
			rd.fallback = s
		}
	}
}

// Reader fetches the most recent commit message.
type Reader struct {
	argv     []string
	dir      string
	timeout  time.Duration
	fallback string
	run      Runner
	log      logx.Logger
}

// NewReader constructs a Reader for argv (default: git log -1 --pretty=%B).
func NewReader(argv []string, log logx.Logger, opts ...Option) *Reader {
	if len(argv) == 0 {
		argv = []string{"git", "log", "-1", "--pretty=%B"}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Reader{
		argv:     append([]string(nil), argv...),
		fallback: Fallback,
		run:      ExecRunner{},
		log:      log.With(logx.String("comp", "changes")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Latest returns the trimmed output of the log command, or the fallback
// summary if the command can't be run or exits non-zero. It never retries.
func (r *Reader) Latest(ctx context.Context) string {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmdline := strings.Join(r.argv, " ")
	stdout, stderr, err := r.run.Run(ctx, r.dir, r.argv[0], r.argv[1:]...)
	if err != nil {
		fields := []logx.Field{
			logx.String("cmd", cmdline),
			logx.String("stderr", strings.TrimSpace(string(stderr))),
			logx.Err(err),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fields = append(fields, logx.Int("exit_code", exitErr.ExitCode()))
		}
		r.log.Warn("reading latest changes failed; using fallback", fields...)
		return r.fallback
	}
	if s := strings.TrimSpace(string(stderr)); s != "" {
		r.log.Warn("log command wrote to stderr", logx.String("cmd", cmdline), logx.String("stderr", s))
	}
	return strings.TrimSpace(string(stdout))
}

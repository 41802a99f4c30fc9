// Package app wires one announcement run: read changes, write the article,
// update the pinned message and print the Bot API response.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"flashnotify/internal/article"
	"flashnotify/internal/changes"
	"flashnotify/internal/config"
	"flashnotify/internal/notifier"
	"flashnotify/internal/transport/telegram"
	logx "flashnotify/pkg/logx"
)

type App struct {
	cfg *config.Config

	log  logx.Logger
	logs *logx.Service

	tg     *telegram.Client
	reader *changes.Reader
	writer *article.Writer
	notif  *notifier.Notifier

	out    io.Writer
	now    func() time.Time
	rng    *rand.Rand
	runner changes.Runner
}

// Option configures an App.
type Option func(*App)

// WithOutput sets where the final response is printed (default os.Stdout).
func WithOutput(w io.Writer) Option { return func(a *App) { a.out = w } }

// WithLogger replaces the configured logging service with log.
func WithLogger(log logx.Logger) Option { return func(a *App) { a.log = log } }

// WithRunner injects the command runner used to read changes.
func WithRunner(r changes.Runner) Option { return func(a *App) { a.runner = r } }

// WithClock injects the clock used for titles, article ids and timestamps.
func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// WithRand injects the source of the risk/score display numbers.
func WithRand(rng *rand.Rand) Option { return func(a *App) { a.rng = rng } }

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, out: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if a.log.IsZero() {
		a.logs, a.log = logx.New(mapLogConfig(cfg))
	}
	log := a.log.With(logx.String("comp", "app"))

	tg, err := telegram.New(telegram.Config{
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		APIURL:  cfg.Telegram.APIURL,
		Timeout: cfg.TelegramTimeout(),
	}, a.log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.tg = tg
	if a.logs != nil {
		a.logs.SetSender(tg)
	}

	a.reader = changes.NewReader(cfg.Changes.Command, a.log,
		changes.WithRunner(a.runner),
		changes.WithDir(cfg.Changes.Dir),
		changes.WithTimeout(cfg.ChangesTimeout()),
		changes.WithFallback(cfg.Changes.Fallback),
	)
	a.writer = article.NewWriter(cfg.Article.Dir, cfg.Article.SiteName)
	a.writer.Now = a.now
	a.notif = notifier.New(notifier.Config{
		SiteName:         cfg.Article.SiteName,
		Links:            mapLinks(cfg.Notify.Links),
		Location:         cfg.Location(),
		SendWhenUnpinned: cfg.Notify.OnMissingPin == config.OnMissingPinSend,
	}, tg, a.log)

	a.log = log
	return a, nil
}

// Run performs one announcement.
//
// A failed pinned message lookup aborts the run with an error before any edit
// is attempted. A failed edit (or bootstrap send) is logged and its failure
// response is printed like a successful one.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()

	summary := a.reader.Latest(ctx)

	now := a.now()
	title, content := article.Generate(a.cfg.Article.SiteName, a.cfg.Article.Content, now.In(a.cfg.Location()))
	art, err := a.writer.Write(title, content)
	if err != nil {
		return fmt.Errorf("article: %w", err)
	}
	url := article.URL(a.cfg.Article.BaseURL, art.ID)
	a.log.Info("article written", logx.Int64("id", art.ID), logx.String("path", art.Path))

	ann := notifier.NewAnnouncement(a.rng, summary, title, url, now)
	resp, err := a.notif.Announce(ctx, ann)
	if err != nil {
		if !errors.Is(err, notifier.ErrEditFailed) && !errors.Is(err, notifier.ErrSendFailed) {
			return fmt.Errorf("announce: %w", err)
		}
		a.log.Error("announcement not delivered", logx.Err(err))
	}

	a.log.Info("run finished",
		logx.Bool("ok", resp.OK),
		logx.Int("risk", ann.Risk),
		logx.Int("score", ann.Score),
		logx.Duration("took", time.Since(start)),
	)
	// The response is the last thing written and the only thing on stdout.
	if _, err := fmt.Fprintf(a.out, "%s\n", resp.Indented()); err != nil {
		return fmt.Errorf("print response: %w", err)
	}
	return nil
}

// Close flushes and closes the logging sinks.
func (a *App) Close() error {
	if a.logs != nil {
		return a.logs.Close()
	}
	return nil
}

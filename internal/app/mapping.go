package app

import (
	"flashnotify/internal/config"
	"flashnotify/internal/notifier"
	logx "flashnotify/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	console := true
	if cfg.Logging.Console != nil {
		console = *cfg.Logging.Console
	}
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Journal: logx.JournalConfig{
			Enabled:    cfg.Logging.Journal.Enabled,
			Identifier: cfg.Logging.Journal.Identifier,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled,
			ChatID:     cfg.Logging.Telegram.ChatID,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

func mapLinks(in []config.Link) []notifier.Link {
	out := make([]notifier.Link, 0, len(in))
	for _, l := range in {
		out = append(out, notifier.Link{Label: l.Label, URL: l.URL})
	}
	return out
}

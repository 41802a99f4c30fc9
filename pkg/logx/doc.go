// Package logx configures flashnotify's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable on stderr (short timestamp + short caller, colour only on a TTY)
//   - File output JSON-structured
//   - Optional journald sink when running under a systemd timer
//   - Optional Telegram sink (min-level + rate limiting), drained on Close
package logx

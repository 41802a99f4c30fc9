package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvBotToken   = "TELEGRAM_BOT_TOKEN"
	EnvChatID     = "TELEGRAM_CHAT_ID"
	EnvConfigPath = "FLASHNOTIFY_CONFIG"
	EnvDotenvPath = "FLASHNOTIFY_ENV_FILE"
)

const defaultTimeout = 10 * time.Second

// ErrMissingEnv is returned when a required environment variable is unset or empty.
var ErrMissingEnv = errors.New("missing required environment variable")

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotenv loads KEY=VALUE pairs from path (default ".env") into the process
// environment. Variables already set are left untouched and a missing file is not an error.
func LoadDotenv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the run configuration.
//
// Required environment variables are checked first so a misconfigured run
// fails before any file is read or any request is made. The optional config
// file named by FLASHNOTIFY_CONFIG is decoded next, then defaults are applied
// and the result is validated.
func Load(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	token, tokenOK := nonEmpty(lookup, EnvBotToken)
	chatID, chatOK := nonEmpty(lookup, EnvChatID)
	var missing []string
	if !tokenOK {
		missing = append(missing, EnvBotToken)
	}
	if !chatOK {
		missing = append(missing, EnvChatID)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	cfg := &Config{}
	if path, ok := nonEmpty(lookup, EnvConfigPath); ok {
		parsed, err := Parse(path)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		cfg = parsed
	}
	cfg.Telegram.Token = token
	cfg.Telegram.ChatID = chatID
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a JSON or YAML (by extension) config file with strict decoding.
func Parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		if b, err = yamlToJSON(b); err != nil {
			return nil, err
		}
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that can't be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("%w: %s", ErrMissingEnv, EnvBotToken)
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		return fmt.Errorf("%w: %s", ErrMissingEnv, EnvChatID)
	}
	if err := checkDuration("telegram.timeout", c.Telegram.Timeout); err != nil {
		return err
	}
	if err := checkDuration("changes.timeout", c.Changes.Timeout); err != nil {
		return err
	}
	if len(c.Changes.Command) == 0 || strings.TrimSpace(c.Changes.Command[0]) == "" {
		return errors.New("changes.command: program name is required")
	}
	switch c.Notify.OnMissingPin {
	case OnMissingPinFail, OnMissingPinSend:
	default:
		return fmt.Errorf("notify.on_missing_pin: unknown policy %q (want %q or %q)", c.Notify.OnMissingPin, OnMissingPinFail, OnMissingPinSend)
	}
	if _, err := time.LoadLocation(c.Notify.Timezone); err != nil {
		return fmt.Errorf("notify.timezone: %w", err)
	}
	for i, l := range c.Notify.Links {
		if strings.TrimSpace(l.Label) == "" || strings.TrimSpace(l.URL) == "" {
			return fmt.Errorf("notify.links[%d]: label and url are required", i)
		}
	}
	return nil
}

// TelegramTimeout returns the per-call Bot API timeout.
func (c *Config) TelegramTimeout() time.Duration {
	return durationOrDefault(c.Telegram.Timeout, defaultTimeout)
}

// ChangesTimeout returns the bound on the log command.
func (c *Config) ChangesTimeout() time.Duration {
	return durationOrDefault(c.Changes.Timeout, defaultTimeout)
}

// Location returns the display timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Notify.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func nonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

package config

// Config is the complete run configuration.
//
// The bot credential and target chat always come from the environment
// (TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID); the optional config file only
// carries the remaining knobs and is decoded strictly so secrets can't
// end up in it by accident.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Changes  ChangesConfig  `json:"changes"`
	Article  ArticleConfig  `json:"article"`
	Notify   NotifyConfig   `json:"notify"`
}

type TelegramConfig struct {
	Token  string `json:"-"`
	ChatID string `json:"-"`

	// APIURL is the Bot API base URL (default: https://api.telegram.org).
	APIURL string `json:"api_url,omitempty"`
	// Timeout is a Go duration string applied to each Bot API call (default "10s").
	Timeout string `json:"timeout,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	// Console is a pointer so an omitted value can default to true.
	Console  *bool           `json:"console,omitempty"`
	File     LoggingFile     `json:"file"`
	Journal  LoggingJournal  `json:"journal"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingJournal struct {
	Enabled    bool   `json:"enabled"`
	Identifier string `json:"identifier,omitempty"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ChatID     string `json:"chat_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// ChangesConfig controls how the latest change summary is read.
type ChangesConfig struct {
	// Command is argv of the log command (default: git log -1 --pretty=%B).
	Command []string `json:"command,omitempty"`
	// Dir is the working directory of the command (default: current directory).
	Dir string `json:"dir,omitempty"`
	// Timeout is a Go duration string (default "10s").
	Timeout  string `json:"timeout,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// ArticleConfig controls article generation.
type ArticleConfig struct {
	Dir      string `json:"dir,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Missing pinned message policies.
const (
	OnMissingPinFail = "fail"
	OnMissingPinSend = "send"
)

// NotifyConfig controls the announcement message.
type NotifyConfig struct {
	// OnMissingPin is "fail" (default) or "send".
	OnMissingPin string `json:"on_missing_pin,omitempty"`
	// Timezone is an IANA zone name used for displayed timestamps (default "UTC").
	Timezone string `json:"timezone,omitempty"`
	Links    []Link `json:"links,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

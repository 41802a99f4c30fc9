package config

import "strings"

const (
	DefaultAPIURL   = "https://api.telegram.org"
	DefaultSiteName = "FlashCryptoSenders"
	DefaultBaseURL  = "https://flashcrypto.vercel.app"
	DefaultFallback = "No recent changes"
	DefaultContent  = "Latest updates and improvements for FlashCryptoSenders. Stay tuned for more exciting features!"
)

// DefaultLinks is the quick-links line of the announcement.
var DefaultLinks = []Link{
	{Label: "Website", URL: "https://flashcrypto.vercel.app/"},
	{Label: "GitHub", URL: "https://github.com/flash-crypto-senders"},
	{Label: "Telegram", URL: "https://t.me/RecentCoders"},
	{Label: "Documentation", URL: "https://flashcrypto.vercel.app/docs"},
	{Label: "Support", URL: "https://flashcrypto.vercel.app/support"},
}

// Default returns a config with every optional field filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Telegram.APIURL) == "" {
		c.Telegram.APIURL = DefaultAPIURL
	}
	c.Telegram.APIURL = strings.TrimRight(c.Telegram.APIURL, "/")
	if strings.TrimSpace(c.Telegram.Timeout) == "" {
		c.Telegram.Timeout = "10s"
	}

	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Console == nil {
		on := true
		c.Logging.Console = &on
	}
	if c.Logging.Telegram.RatePerSec <= 0 {
		c.Logging.Telegram.RatePerSec = 1
	}

	if len(c.Changes.Command) == 0 {
		c.Changes.Command = []string{"git", "log", "-1", "--pretty=%B"}
	}
	if strings.TrimSpace(c.Changes.Timeout) == "" {
		c.Changes.Timeout = "10s"
	}
	if c.Changes.Fallback == "" {
		c.Changes.Fallback = DefaultFallback
	}

	if strings.TrimSpace(c.Article.Dir) == "" {
		c.Article.Dir = "articles"
	}
	if strings.TrimSpace(c.Article.SiteName) == "" {
		c.Article.SiteName = DefaultSiteName
	}
	if strings.TrimSpace(c.Article.BaseURL) == "" {
		c.Article.BaseURL = DefaultBaseURL
	}
	c.Article.BaseURL = strings.TrimRight(c.Article.BaseURL, "/")
	if c.Article.Content == "" {
		c.Article.Content = DefaultContent
	}

	c.Notify.OnMissingPin = strings.ToLower(strings.TrimSpace(c.Notify.OnMissingPin))
	if c.Notify.OnMissingPin == "" {
		c.Notify.OnMissingPin = OnMissingPinFail
	}
	if strings.TrimSpace(c.Notify.Timezone) == "" {
		c.Notify.Timezone = "UTC"
	}
	if c.Notify.Links == nil {
		c.Notify.Links = append([]Link(nil), DefaultLinks...)
	}
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// checkDuration reports a malformed or negative duration string under its
// config key. An empty value is allowed and means "use the default".
func checkDuration(key, raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: %q is not a duration (e.g. 10s, 1m30s)", key, raw)
	}
	if d < 0 {
		return fmt.Errorf("%s: %q is negative", key, raw)
	}
	return nil
}

// durationOrDefault returns raw as a duration, or def when raw is empty, zero
// or invalid. Validate rejects invalid values before the accessors run.
func durationOrDefault(raw string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

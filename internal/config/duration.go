package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration is a config field holding a Go duration string ("500ms", "24h").
// The empty string means unset; negative values are rejected so a config
// typo cannot smuggle a negative timeout into the components it feeds.
type Duration string

func (d Duration) IsSet() bool { return strings.TrimSpace(string(d)) != "" }

// Parse resolves the field, zero when unset. field names the config key for
// error messages.
func (d Duration) Parse(field string) (time.Duration, error) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, string(d), err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", field)
	}
	return v, nil
}

// ParseOr resolves the field, substituting def when it is unset or zero.
func (d Duration) ParseOr(field string, def time.Duration) (time.Duration, error) {
	v, err := d.Parse(field)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return def, nil
	}
	return v, nil
}

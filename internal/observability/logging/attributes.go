package logging

import (
	"log/slog"
	"net/url"
	"strings"
)

// RedactedStringURL is a string containing a URL for safe logging
type RedactedStringURL string

// LogValue implements slog.LogValuer to avoid revealing passwords and query secrets
func (s RedactedStringURL) LogValue() slog.Value {
	u, err := url.Parse(string(s))
	if err != nil {
		return slog.StringValue(string(s))
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	return slog.StringValue(u.Redacted())
}

// RedactStringURL returns a safely loggable URL string
func RedactStringURL(s string) slog.LogValuer {
	return RedactedStringURL(s)
}

// TokenFingerprint is a bearer credential reduced to something safe to log
type TokenFingerprint string

// LogValue keeps the first and last four characters of a credential
func (t TokenFingerprint) LogValue() slog.Value {
	s := strings.TrimSpace(string(t))
	if len(s) <= 12 {
		return slog.StringValue("***")
	}
	return slog.StringValue(s[:4] + "..." + s[len(s)-4:])
}

// Fingerprint returns a loggable stand-in for a bearer credential
func Fingerprint(token string) slog.LogValuer {
	return TokenFingerprint(token)
}

package logger

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeyPatterns mark attribute keys whose values are never logged.
var sensitiveKeyPatterns = []string{
	"token",
	"secret",
	"password",
	"cookie",
	"pepper",
	"authorization",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// dsnPasswordPattern matches password=... in keyword/value DSNs.
var dsnPasswordPattern = regexp.MustCompile(`(?i)(password\s*=\s*)('[^']*'|\S+)`)

// redactSensitive redacts an attribute whose key marks it as sensitive.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if a.Value.Kind() != slog.KindString || a.Value.String() == "" {
		return a
	}

	keyLower := strings.ToLower(a.Key)
	if keyLower == "dsn" || strings.HasSuffix(keyLower, "_dsn") {
		return slog.String(a.Key, RedactDSN(a.Value.String()))
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// RedactDSN removes the password from a PostgreSQL connection string.
// Both URL (postgres://user:pw@host/db) and keyword/value
// (host=... password=...) forms are handled.
func RedactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return redactedValue
		}
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		q := u.Query()
		if q.Has("password") {
			q.Set("password", "xxxxx")
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	return dsnPasswordPattern.ReplaceAllString(dsn, "${1}xxxxx")
}

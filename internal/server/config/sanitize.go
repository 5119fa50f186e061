package config

import (
	"strings"

	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// Sanitize returns a copy of the config with sensitive fields masked.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Credentials.DSN != "" {
		sanitized.Credentials.DSN = logger.RedactDSN(sanitized.Credentials.DSN)
	}
	if sanitized.Credentials.Pepper != "" {
		sanitized.Credentials.Pepper = maskSecret(sanitized.Credentials.Pepper)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

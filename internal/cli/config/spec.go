package config

import "time"

// CLIConfig is the configuration for sitegate-cli.
type CLIConfig struct {
	Server     string `yaml:"server,omitempty"`
	Output     string `yaml:"output,omitempty"`
	CookieName string `yaml:"cookie_name,omitempty"`

	// Session is the last session obtained by `login`.
	Session *SavedSession `yaml:"session,omitempty"`
}

// SavedSession is an admin session kept between CLI invocations.
type SavedSession struct {
	Server    string    `yaml:"server"`
	Identity  string    `yaml:"identity"`
	Token     string    `yaml:"token"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *SavedSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Default configuration values.
const (
	DefaultServer = "http://localhost:3000"
	DefaultOutput = "table"
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: DefaultServer,
		Output: DefaultOutput,
	}
}

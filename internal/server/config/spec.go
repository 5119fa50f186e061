package config

import "time"

// ServerConfig is the root configuration for sitegate-server.
type ServerConfig struct {
	Server      ServerSection      `koanf:"server"`
	Session     SessionSection     `koanf:"session"`
	Credentials CredentialsSection `koanf:"credentials"`
	Security    SecuritySection    `koanf:"security"`
	Log         LogSection         `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP   HTTPConfig   `koanf:"http"`
	Static StaticConfig `koanf:"static"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr              string        `koanf:"addr"`
	TLSCertFile       string        `koanf:"tls_cert_file"`
	TLSKeyFile        string        `koanf:"tls_key_file"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// StaticConfig configures the static file responder.
type StaticConfig struct {
	Root string `koanf:"root"`

	// Fallback serves index.html for unknown paths.
	Fallback bool `koanf:"fallback"`
}

// SessionSection configures admin sessions and their cookie.
type SessionSection struct {
	TTL        time.Duration `koanf:"ttl"`
	CookieName string        `koanf:"cookie_name"`
	CookiePath string        `koanf:"cookie_path"`
	Secure     bool          `koanf:"secure"`

	// SameSite is strict, lax or none.
	SameSite string `koanf:"same_site"`
}

// CredentialsSection configures the credential store.
//
// An empty DSN leaves the store unconfigured: the server starts, serves
// static content and answers logins with 503.
type CredentialsSection struct {
	DSN            string        `koanf:"dsn"`
	Query          string        `koanf:"query"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`
	MaxConns       int32         `koanf:"max_conns"`

	// SecretEncoding is plain or argon2id.
	SecretEncoding string `koanf:"secret_encoding"`
	Pepper         string `koanf:"pepper"`
}

// SecuritySection configures request limits.
type SecuritySection struct {
	// LoginRate is login attempts per second per client IP. Zero disables
	// the limit.
	LoginRate    float64 `koanf:"login_rate"`
	LoginBurst   int     `koanf:"login_burst"`
	MaxBodyBytes int64   `koanf:"max_body_bytes"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Audit  bool   `koanf:"audit"`
}

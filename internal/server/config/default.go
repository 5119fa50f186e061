package config

import (
	"time"

	"github.com/yndnr/sitegate/internal/storage/credential"
)

// Default configuration values.
const (
	DefaultHTTPAddr          = ":3000"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultStaticRoot        = "./public"

	DefaultSessionTTL = time.Hour
	DefaultCookieName = "sitegate_admin"
	DefaultCookiePath = "/"
	DefaultSameSite   = "strict"

	DefaultConnectTimeout = 5 * time.Second
	DefaultQueryTimeout   = 3 * time.Second
	DefaultMaxConns       = 4
	DefaultSecretEncoding = credential.EncodingPlain

	DefaultLoginRate    = 1.0
	DefaultLoginBurst   = 5
	DefaultMaxBodyBytes = 16 << 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:              DefaultHTTPAddr,
				ReadHeaderTimeout: DefaultReadHeaderTimeout,
				ShutdownTimeout:   DefaultShutdownTimeout,
			},
			Static: StaticConfig{
				Root:     DefaultStaticRoot,
				Fallback: true,
			},
		},
		Session: SessionSection{
			TTL:        DefaultSessionTTL,
			CookieName: DefaultCookieName,
			CookiePath: DefaultCookiePath,
			SameSite:   DefaultSameSite,
		},
		Credentials: CredentialsSection{
			Query:          credential.DefaultQuery,
			ConnectTimeout: DefaultConnectTimeout,
			QueryTimeout:   DefaultQueryTimeout,
			MaxConns:       DefaultMaxConns,
			SecretEncoding: DefaultSecretEncoding,
		},
		Security: SecuritySection{
			LoginRate:    DefaultLoginRate,
			LoginBurst:   DefaultLoginBurst,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Audit:  true,
		},
	}
}

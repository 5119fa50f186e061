package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/sitegate/internal/server/httpserver/cookie"
	"github.com/yndnr/sitegate/internal/storage/credential"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifySession(&cfg.Session),
		verifyCredentials(&cfg.Credentials),
		verifySecurity(&cfg.Security),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if _, port, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err))
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("server.http.addr %q: invalid port", cfg.HTTP.Addr))
	}

	cert, key := cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile
	switch {
	case (cert == "") != (key == ""):
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	case cert != "":
		for _, f := range []string{cert, key} {
			if _, err := os.Stat(f); err != nil {
				errs = append(errs, fmt.Errorf("server.http tls file: %w", err))
			}
		}
	}

	if cfg.HTTP.ReadHeaderTimeout <= 0 {
		errs = append(errs, errors.New("server.http.read_header_timeout must be positive"))
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.http.shutdown_timeout must be positive"))
	}
	if cfg.Static.Root == "" {
		errs = append(errs, errors.New("server.static.root is required"))
	}
	return errors.Join(errs...)
}

func verifySession(cfg *SessionSection) error {
	var errs []error
	switch {
	case cfg.TTL < time.Second:
		errs = append(errs, errors.New("session.ttl must be at least 1s"))
	case cfg.TTL%time.Second != 0:
		errs = append(errs, fmt.Errorf("session.ttl %s must be a whole number of seconds", cfg.TTL))
	}
	if !validCookieName(cfg.CookieName) {
		errs = append(errs, fmt.Errorf("session.cookie_name %q is not a valid cookie name", cfg.CookieName))
	}
	if !strings.HasPrefix(cfg.CookiePath, "/") {
		errs = append(errs, errors.New("session.cookie_path must start with /"))
	}
	if _, err := cookie.ParseSameSite(cfg.SameSite); err != nil {
		errs = append(errs, fmt.Errorf("session.same_site: %w", err))
	} else if strings.EqualFold(cfg.SameSite, "none") && !cfg.Secure {
		errs = append(errs, errors.New("session.same_site none requires session.secure"))
	}
	return errors.Join(errs...)
}

func validCookieName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune(`()<>@,;:\"/[]?={}`, r) {
			return false
		}
	}
	return true
}

func verifyCredentials(cfg *CredentialsSection) error {
	var errs []error
	if !strings.Contains(cfg.Query, "$1") || !strings.Contains(cfg.Query, "$2") {
		errs = append(errs, errors.New("credentials.query must bind $1 (identity) and $2 (secret)"))
	}
	if cfg.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("credentials.connect_timeout must be positive"))
	}
	if cfg.QueryTimeout <= 0 {
		errs = append(errs, errors.New("credentials.query_timeout must be positive"))
	}
	if cfg.MaxConns < 1 {
		errs = append(errs, errors.New("credentials.max_conns must be at least 1"))
	}
	if _, err := credential.NewEncoder(cfg.SecretEncoding, cfg.Pepper); err != nil {
		errs = append(errs, fmt.Errorf("credentials.secret_encoding: %w", err))
	}
	return errors.Join(errs...)
}

func verifySecurity(cfg *SecuritySection) error {
	var errs []error
	if cfg.LoginRate < 0 {
		errs = append(errs, errors.New("security.login_rate must not be negative"))
	}
	if cfg.LoginRate > 0 && cfg.LoginBurst < 1 {
		errs = append(errs, errors.New("security.login_burst must be at least 1"))
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("security.max_body_bytes must be positive"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q (want debug, info, warn or error)", cfg.Level))
	}
	switch cfg.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q (want json or text)", cfg.Format))
	}
	return errors.Join(errs...)
}

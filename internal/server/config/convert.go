package config

import (
	"github.com/yndnr/sitegate/internal/server/httpserver/cookie"
	"github.com/yndnr/sitegate/internal/storage/credential"
)

// StoreConfig returns the credential store settings.
func (c *CredentialsSection) StoreConfig() credential.Config {
	return credential.Config{
		DSN:            c.DSN,
		Query:          c.Query,
		ConnectTimeout: c.ConnectTimeout,
		QueryTimeout:   c.QueryTimeout,
		MaxConns:       c.MaxConns,
		SecretEncoding: c.SecretEncoding,
		Pepper:         c.Pepper,
	}
}

// CookieConfig returns the session cookie attributes.
func (s *SessionSection) CookieConfig() (cookie.Config, error) {
	sameSite, err := cookie.ParseSameSite(s.SameSite)
	if err != nil {
		return cookie.Config{}, err
	}
	return cookie.Config{
		Name:     s.CookieName,
		Path:     s.CookiePath,
		Secure:   s.Secure,
		SameSite: sameSite,
	}, nil
}

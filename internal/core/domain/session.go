package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionIDPrefix is the prefix for session IDs.
const SessionIDPrefix = "sgs-"

// sessionIDLength is the prefix plus a 26 character ULID.
const sessionIDLength = len(SessionIDPrefix) + 26

// Session is an authenticated admin session.
//
// Sessions are owned by the session store. The plaintext token is handed to
// the client once; the store keeps only TokenHash.
type Session struct {
	// ID identifies the session in logs and metrics.
	// Format: sgs-{ulid_lowercase}.
	ID string `json:"id"`

	// Identity is the authenticated principal's username.
	Identity string `json:"identity"`

	// TokenHash is the hex SHA-256 of the session token.
	TokenHash string `json:"-"`

	// CreatedAt is the issue time.
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session for identity created at now.
func NewSession(identity, tokenHash string, now time.Time) (*Session, error) {
	id, err := GenerateSessionID(now)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		Identity:  identity,
		TokenHash: tokenHash,
		CreatedAt: now,
	}, nil
}

// GenerateSessionID generates a ULID based session ID stamped with now.
func GenerateSessionID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id.String()), nil
}

// Age returns how long the session has existed at now.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Expired reports whether the session has outlived ttl at now.
// A session whose age equals ttl is still valid.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return s.Age(now) > ttl
}

// ExpiresAt returns the last instant at which the session is valid.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// IsValidSessionID checks if a string is a well-formed session ID.
func IsValidSessionID(id string) bool {
	id = strings.ToLower(id)
	if !strings.HasPrefix(id, SessionIDPrefix) || len(id) != sessionIDLength {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(id[len(SessionIDPrefix):]))
	return err == nil
}

package service

import (
	"context"
	"time"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// SessionRepository defines the storage interface for session operations.
type SessionRepository interface {
	// Issue mints a token for identity and records a new session.
	Issue(ctx context.Context, identity string) (string, *domain.Session, error)

	// Lookup returns the session bound to token, or ErrSessionNotFound /
	// ErrSessionExpired.
	Lookup(ctx context.Context, token string) (*domain.Session, error)

	// Revoke removes the session bound to token and reports whether one
	// existed.
	Revoke(ctx context.Context, token string) bool

	// TTL returns the session lifetime.
	TTL() time.Duration
}

// SessionService exposes session checks and logout.
type SessionService struct {
	repo SessionRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// SessionInfo describes a valid session.
type SessionInfo struct {
	ID        string
	Identity  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Describe returns details of the session bound to token. It fails with
// ErrSessionNotFound or ErrSessionExpired; an expired session is removed by
// the lookup.
func (s *SessionService) Describe(ctx context.Context, token string) (*SessionInfo, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	sess, err := s.repo.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		ID:        sess.ID,
		Identity:  sess.Identity,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt(s.repo.TTL()),
	}, nil
}

// Logout revokes the session bound to token. An empty or unknown token is
// a no-op that returns false.
func (s *SessionService) Logout(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	removed := s.repo.Revoke(ctx, token)
	if removed {
		logger.L(ctx).Info("admin session revoked")
	}
	return removed
}

// TTL returns the session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.repo.TTL()
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// CredentialMatcher checks credentials against the backing store.
type CredentialMatcher interface {
	// Match runs one query bound to identity and secret and reports whether
	// it returned a row.
	Match(ctx context.Context, identity, secret string) (bool, error)

	// EnsureReady initializes the store connection if needed.
	EnsureReady(ctx context.Context) error
}

// LoginOutcome is the terminal state of a login attempt.
type LoginOutcome string

// Login outcomes.
const (
	OutcomeBadRequest    LoginOutcome = "bad_request"
	OutcomeRejected      LoginOutcome = "rejected"
	OutcomeUnavailable   LoginOutcome = "unavailable"
	OutcomeSessionIssued LoginOutcome = "session_issued"

	// OutcomeFailed covers credentials that matched but could not be turned
	// into a session.
	OutcomeFailed LoginOutcome = "failed"
)

// LoginObserver is notified of every login outcome.
type LoginObserver interface {
	LoginAttempt(outcome LoginOutcome)
}

type nopLoginObserver struct{}

func (nopLoginObserver) LoginAttempt(LoginOutcome) {}

// LoginRequest carries submitted credentials.
type LoginRequest struct {
	Identity string
	Secret   string
}

// LoginResponse is returned for an issued session.
type LoginResponse struct {
	Token     string
	SessionID string
	Identity  string
	TTL       time.Duration
	ExpiresAt time.Time
}

// AuthService is the admin login gate.
type AuthService struct {
	creds    CredentialMatcher
	sessions SessionRepository
	observer LoginObserver
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithLoginObserver registers a login outcome observer.
func WithLoginObserver(o LoginObserver) AuthOption {
	return func(s *AuthService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(creds CredentialMatcher, sessions SessionRepository, opts ...AuthOption) *AuthService {
	s := &AuthService{
		creds:    creds,
		sessions: sessions,
		observer: nopLoginObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and issues a session when they match.
//
// Errors:
//   - ErrBadRequest: identity or secret is empty or whitespace
//   - ErrInvalidCredentials: no match; the message never says which part was wrong
//   - ErrServiceUnavailable: the credential store could not answer
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	log := logger.L(ctx)

	if req == nil || strings.TrimSpace(req.Identity) == "" || strings.TrimSpace(req.Secret) == "" {
		s.observer.LoginAttempt(OutcomeBadRequest)
		return nil, domain.ErrBadRequest.WithDetails("identity and secret are required")
	}

	matched, err := s.creds.Match(ctx, req.Identity, req.Secret)
	if err != nil {
		s.observer.LoginAttempt(OutcomeUnavailable)
		log.Error("credential check failed", "identity", req.Identity, "error", err)
		if errors.Is(err, domain.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, domain.ErrServiceUnavailable.WithCause(err)
	}

	if !matched {
		s.observer.LoginAttempt(OutcomeRejected)
		log.Warn("admin login rejected", "identity", req.Identity)
		return nil, domain.ErrInvalidCredentials
	}

	token, sess, err := s.sessions.Issue(ctx, req.Identity)
	if err != nil {
		s.observer.LoginAttempt(OutcomeFailed)
		log.Error("session issue failed", "identity", req.Identity, "error", err)
		return nil, err
	}

	s.observer.LoginAttempt(OutcomeSessionIssued)
	ttl := s.sessions.TTL()
	log.Info("admin login succeeded", "identity", sess.Identity, "session_id", sess.ID)

	return &LoginResponse{
		Token:     token,
		SessionID: sess.ID,
		Identity:  sess.Identity,
		TTL:       ttl,
		ExpiresAt: sess.ExpiresAt(ttl),
	}, nil
}

// Ready reports whether the credential store can serve queries.
func (s *AuthService) Ready(ctx context.Context) error {
	return s.creds.EnsureReady(ctx)
}

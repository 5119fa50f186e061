package memory

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/pkg/token"
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = time.Hour

// maxIssueAttempts bounds token regeneration on digest collision.
const maxIssueAttempts = 3

// Observer receives session lifecycle events. Calls happen while the store
// lock is held and must not call back into the store.
type Observer interface {
	SessionIssued(s *domain.Session)
	SessionRevoked(s *domain.Session)
	SessionsExpired(n int)
}

type nopObserver struct{}

func (nopObserver) SessionIssued(*domain.Session)  {}
func (nopObserver) SessionRevoked(*domain.Session) {}
func (nopObserver) SessionsExpired(int)            {}

// Store is an in-memory session store with time based expiry.
type Store struct {
	mu sync.Mutex

	// TokenHash -> Session
	sessions map[string]*domain.Session

	ttl      time.Duration
	now      func() time.Time
	generate token.Generator
	observer Observer
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the session lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenGenerator replaces the token source.
func WithTokenGenerator(gen token.Generator) Option {
	return func(s *Store) {
		if gen != nil {
			s.generate = gen
		}
	}
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*domain.Session),
		ttl:      DefaultTTL,
		now:      time.Now,
		generate: token.Generate,
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue mints a token for identity and records the session.
//
// Expired entries are swept first. The returned session is a copy; its
// TokenHash is the store's key for the token.
func (s *Store) Issue(_ context.Context, identity string) (string, *domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		tok, err := s.generate()
		if err != nil {
			return "", nil, domain.ErrInternalServer.WithCause(err)
		}

		hash := token.Hash(tok)
		if _, exists := s.sessions[hash]; exists {
			continue
		}

		session, err := domain.NewSession(identity, hash, now)
		if err != nil {
			return "", nil, err
		}
		s.sessions[hash] = session
		s.observer.SessionIssued(session)

		clone := *session
		return tok, &clone, nil
	}

	return "", nil, domain.ErrTokenConflict
}

// Validate returns the identity bound to tok if the session is still valid.
// An expired session found here is removed.
func (s *Store) Validate(_ context.Context, tok string) (string, bool) {
	session, err := s.lookup(tok)
	if err != nil {
		return "", false
	}
	return session.Identity, true
}

// Lookup returns a copy of the session bound to tok.
//
// It fails with ErrSessionNotFound for unknown tokens and ErrSessionExpired
// for a session that has outlived the TTL, which is removed in the process.
func (s *Store) Lookup(_ context.Context, tok string) (*domain.Session, error) {
	session, err := s.lookup(tok)
	if err != nil {
		return nil, err
	}
	clone := *session
	return &clone, nil
}

func (s *Store) lookup(tok string) (*domain.Session, error) {
	if tok == "" {
		return nil, domain.ErrSessionNotFound
	}
	hash := token.Hash(tok)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[hash]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(s.now(), s.ttl) {
		delete(s.sessions, hash)
		s.observer.SessionsExpired(1)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Revoke removes the session bound to tok. It reports whether anything was
// removed; revoking an unknown token is a no-op.
func (s *Store) Revoke(_ context.Context, tok string) bool {
	if tok == "" {
		return false
	}
	hash := token.Hash(tok)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[hash]
	if !ok {
		return false
	}
	delete(s.sessions, hash)
	s.observer.SessionRevoked(session)
	return true
}

// Sweep removes every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(s.now())
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for hash, session := range s.sessions {
		if session.Expired(now, s.ttl) {
			delete(s.sessions, hash)
			removed++
		}
	}
	if removed > 0 {
		s.observer.SessionsExpired(removed)
	}
	return removed
}

// Count returns the number of stored sessions, expired ones included until
// they are swept.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Reset drops every session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*domain.Session)
}

package credential

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/yndnr/sitegate/internal/core/domain"
)

// DefaultQuery matches an admin by username and password.
const DefaultQuery = "SELECT 1 FROM admin_users WHERE username = $1 AND password = $2 LIMIT 1"

// Config configures the PostgreSQL credential store.
type Config struct {
	// DSN is the PostgreSQL connection string. Empty leaves the store
	// unconfigured and every Match fails with ErrServiceUnavailable.
	DSN string

	// Query must take identity as $1 and the encoded secret as $2.
	Query string

	ConnectTimeout time.Duration
	QueryTimeout   time.Duration

	// MaxConns caps the pool size. Zero keeps the pgxpool default.
	MaxConns int32

	// SecretEncoding is "plain" or "argon2id".
	SecretEncoding string

	// Pepper salts the argon2id encoding.
	Pepper string
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Query:          DefaultQuery,
		ConnectTimeout: 5 * time.Second,
		QueryTimeout:   3 * time.Second,
		MaxConns:       4,
		SecretEncoding: EncodingPlain,
	}
}

// querier is the subset of *pgxpool.Pool the store uses.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

type dialFunc func(ctx context.Context, cfg *pgxpool.Config) (querier, error)

func dialPool(ctx context.Context, cfg *pgxpool.Config) (querier, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// PostgresStore checks credentials with a single parameterized query.
type PostgresStore struct {
	cfg     Config
	encoder Encoder
	dial    dialFunc
	logger  *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	pool   querier
	closed bool
}

// Option configures a PostgresStore.
type Option func(*PostgresStore)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *PostgresStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPostgresStore creates a store. No connection is opened until the first
// EnsureReady or Match.
func NewPostgresStore(cfg Config, opts ...Option) (*PostgresStore, error) {
	defaults := DefaultConfig()
	if cfg.Query == "" {
		cfg.Query = defaults.Query
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaults.QueryTimeout
	}

	enc, err := NewEncoder(cfg.SecretEncoding, cfg.Pepper)
	if err != nil {
		return nil, err
	}

	s := &PostgresStore{
		cfg:     cfg,
		encoder: enc,
		dial:    dialPool,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *PostgresStore) current() querier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

func (s *PostgresStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func errStoreClosed() error {
	return domain.ErrServiceUnavailable.WithDetails("credential store closed")
}

// EnsureReady opens and pings the pool if it is not open yet.
//
// Concurrent first callers share one attempt. A failed attempt is not
// cached; the next call dials again.
func (s *PostgresStore) EnsureReady(ctx context.Context) error {
	if s.current() != nil {
		return nil
	}
	if s.isClosed() {
		return errStoreClosed()
	}
	if s.cfg.DSN == "" {
		return domain.ErrServiceUnavailable.WithDetails("credential store not configured")
	}

	ch := s.group.DoChan("connect", func() (any, error) {
		if p := s.current(); p != nil {
			return p, nil
		}
		return s.connect(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return domain.ErrServiceUnavailable.WithCause(ctx.Err())
	}
}

func (s *PostgresStore) connect(ctx context.Context) (querier, error) {
	poolCfg, err := pgxpool.ParseConfig(s.cfg.DSN)
	if err != nil {
		s.logger.Error("invalid credential store dsn", "error", err)
		return nil, domain.ErrServiceUnavailable.WithDetails("invalid dsn").WithCause(err)
	}
	if s.cfg.MaxConns > 0 {
		poolCfg.MaxConns = s.cfg.MaxConns
	}
	poolCfg.ConnConfig.ConnectTimeout = s.cfg.ConnectTimeout

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	pool, err := s.dial(ctx, poolCfg)
	if err != nil {
		s.logger.Warn("credential store connect failed", "error", err)
		return nil, domain.ErrServiceUnavailable.WithCause(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		s.logger.Warn("credential store ping failed", "error", err)
		return nil, domain.ErrServiceUnavailable.WithCause(err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		pool.Close()
		s.logger.Debug("credential store closed while connecting")
		return nil, errStoreClosed()
	}
	s.pool = pool
	s.mu.Unlock()

	s.logger.Info("credential store connected",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"max_conns", poolCfg.MaxConns,
	)
	return pool, nil
}

// Match reports whether identity and secret select at least one row.
func (s *PostgresStore) Match(ctx context.Context, identity, secret string) (bool, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return false, err
	}
	pool := s.current()
	if pool == nil {
		return false, errStoreClosed()
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	rows, err := pool.Query(queryCtx, s.cfg.Query, identity, s.encoder.Encode(secret))
	if err != nil {
		return false, s.queryFailed(err)
	}
	defer rows.Close()

	matched := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, s.queryFailed(err)
	}
	return matched, nil
}

func (s *PostgresStore) queryFailed(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("credential query timed out", "timeout", s.cfg.QueryTimeout)
		return domain.ErrServiceUnavailable.WithDetails("credential query timed out").WithCause(err)
	}
	s.logger.Warn("credential query failed", "error", err)
	return domain.ErrServiceUnavailable.WithCause(err)
}

// Close closes the pool if one was opened. A connect still in flight closes
// its pool when it finishes, and the store never dials again.
func (s *PostgresStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

package tlsroots

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/sitegate/internal/infra/confloader"
)

// ExpiryWarning is how close to NotAfter a loaded certificate starts
// logging a warning.
const ExpiryWarning = 30 * 24 * time.Hour

// DefaultDebounce lets the cert and key writes of one rotation settle
// before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Reloader serves the current certificate pair and swaps it when the files
// change. A failed reload keeps the previous certificate.
type Reloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	logger   *slog.Logger
	debounce time.Duration
	now      func() time.Time
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reloader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// NewReloader loads the pair once and fails if it cannot.
func NewReloader(certFile, keyFile string, opts ...Option) (*Reloader, error) {
	r := &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads the pair from disk and makes it current.
func (r *Reloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("tlsroots: parse certificate: %w", err)
	}
	cert.Leaf = leaf
	r.cert.Store(&cert)

	log := r.logger.With(
		"cert_file", r.certFile,
		"subject", leaf.Subject.CommonName,
		"not_after", leaf.NotAfter,
	)
	switch left := leaf.NotAfter.Sub(r.now()); {
	case left <= 0:
		log.Error("serving certificate has expired")
	case left < ExpiryWarning:
		log.Warn("serving certificate expires soon", "remaining", left.Round(time.Hour))
	default:
		log.Info("serving certificate loaded")
	}
	return nil
}

// Certificate returns the current pair.
func (r *Reloader) Certificate() *tls.Certificate {
	return r.cert.Load()
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// TLSConfig returns a server config backed by the reloader.
func (r *Reloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: r.GetCertificate,
	}
}

// Run watches the cert and key files until ctx ends.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(r.logger),
		confloader.WithDebounce(r.debounce),
	)
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer w.Stop()

	for _, path := range []string{r.certFile, r.keyFile} {
		if err := w.Watch(path); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", path, err)
		}
	}

	w.OnChange(func(path string) {
		if err := r.Reload(); err != nil {
			r.logger.Error("certificate reload failed, keeping previous",
				"changed", path, "error", err)
		}
	})

	w.Run(ctx)
	return nil
}

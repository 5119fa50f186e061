package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/sitegate/internal/server/httpserver/handler"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler wires the API handlers and the static responder.
	Handler handler.Config

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics receives per-request observations. Nil disables them.
	Metrics RequestObserver

	// LoginRate and LoginBurst bound login attempts per client IP.
	// A non-positive rate disables the limit.
	LoginRate  float64
	LoginBurst int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		LoginRate:   1,
		LoginBurst:  5,
		EnableAudit: true,
	}
}

// NewRouter creates the HTTP handler with all routes and middleware.
//
// Order: RequestID -> Metrics -> Audit -> Recover -> routes. Login also
// passes through RateLimit.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	hcfg := cfg.Handler
	if hcfg.Logger == nil {
		hcfg.Logger = log
	}
	h := handler.New(hcfg)

	mux := http.NewServeMux()
	mux.Handle("/", h)
	if cfg.LoginRate > 0 {
		burst := cfg.LoginBurst
		if burst < 1 {
			burst = 1
		}
		mux.Handle("POST /api/admin/login", Chain(h, RateLimit(cfg.LoginRate, burst)))
	}

	middlewares := []Middleware{RequestID()}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, Metrics(cfg.Metrics))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}
	middlewares = append(middlewares, Recover(log))

	return Chain(mux, middlewares...)
}

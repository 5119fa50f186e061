package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/core/service"
	"github.com/yndnr/sitegate/internal/server/httpserver/cookie"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// DefaultMaxBodyBytes caps the login request body.
const DefaultMaxBodyBytes int64 = 16 << 10

// Config wires the handler to its services.
type Config struct {
	Auth     *service.AuthService
	Sessions *service.SessionService

	// Cookie describes the admin session cookie.
	Cookie cookie.Config

	// Static serves every path not claimed by the API. Nil answers 404.
	Static http.Handler

	// Metrics serves GET /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	cookie   cookie.Config
	static   http.Handler
	metrics  http.Handler
	maxBody  int64
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		auth:     cfg.Auth,
		sessions: cfg.Sessions,
		cookie:   cfg.Cookie,
		static:   cfg.Static,
		metrics:  cfg.Metrics,
		maxBody:  cfg.MaxBodyBytes,
		logger:   cfg.Logger,
		mux:      http.NewServeMux(),
	}
	if h.cookie.Name == "" {
		h.cookie = cookie.DefaultConfig()
	}
	if h.maxBody <= 0 {
		h.maxBody = DefaultMaxBodyBytes
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.static == nil {
		h.static = http.NotFoundHandler()
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}

	h.mux.HandleFunc("POST /api/admin/login", h.handleLogin)
	h.mux.HandleFunc("POST /api/admin/logout", h.handleLogout)
	h.mux.HandleFunc("GET /api/admin/session", h.handleSession)

	// The catch-all below would otherwise answer other methods with a page.
	h.mux.Handle("/api/admin/login", h.methodNotAllowed(http.MethodPost))
	h.mux.Handle("/api/admin/logout", h.methodNotAllowed(http.MethodPost))
	h.mux.Handle("/api/admin/session", h.methodNotAllowed(http.MethodGet, http.MethodHead))
	h.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, domain.ErrNotFound)
	})

	h.mux.Handle("/", h.static)
}

func (h *Handler) methodNotAllowed(allowed ...string) http.Handler {
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		h.writeError(w, r, domain.ErrMethodNotAllowed)
	})
}

// writeJSON writes v as a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID := logger.RequestIDFromContext(r.Context()); requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a domain error with its mapped status.
//
// Only the code, message and details reach the client; the cause stays in
// the logs.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.GetErrorCode(err)
	status, known := errorCodeToHTTPStatus[code]
	if !known {
		h.logger.Error("internal error", "error", err)
		code = domain.ErrInternalServer.Code
		status = http.StatusInternalServerError
		err = domain.ErrInternalServer
	}

	w.Header().Set("X-Error-Code", code)
	h.writeJSON(w, r, status, &ErrorResponse{
		Success: false,
		Message: clientMessage(err),
		Code:    code,
	})
}

func clientMessage(err error) string {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return domain.ErrInternalServer.Message
	}
	// Details of availability failures describe infrastructure.
	if de.Details != "" && de.Code != domain.ErrServiceUnavailable.Code {
		return de.Message + ": " + de.Details
	}
	return de.Message
}

// errorCodeToHTTPStatus maps client facing error codes to HTTP status codes.
// Codes missing here are answered as internal errors.
var errorCodeToHTTPStatus = map[string]int{
	domain.ErrBadRequest.Code:         http.StatusBadRequest,
	domain.ErrMissingArgument.Code:    http.StatusBadRequest,
	domain.ErrInvalidArgument.Code:    http.StatusBadRequest,
	domain.ErrInvalidCredentials.Code: http.StatusUnauthorized,
	domain.ErrNotFound.Code:           http.StatusNotFound,
	domain.ErrMethodNotAllowed.Code:   http.StatusMethodNotAllowed,
	domain.ErrPayloadTooLarge.Code:    http.StatusRequestEntityTooLarge,
	domain.ErrRateLimited.Code:        http.StatusTooManyRequests,
	domain.ErrInternalServer.Code:     http.StatusInternalServerError,
	domain.ErrServiceUnavailable.Code: http.StatusServiceUnavailable,
}

// StatusForCode returns the HTTP status for an error code.
func StatusForCode(code string) int {
	if status, ok := errorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

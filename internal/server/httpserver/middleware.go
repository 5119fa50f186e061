package httpserver

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// maxRequestIDLength bounds a client supplied X-Request-ID.
const maxRequestIDLength = 128

// RequestID adds a unique request ID to each request. Loggers taken with
// logger.L carry it.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = "req-" + uuid.NewString()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = withStartTime(ctx, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover recovers from panics and returns a 500 JSON error.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"error", rec,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, domain.ErrInternalServer)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs one line per request.
func Audit(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(startTime(r.Context())).Milliseconds(),
				"client_ip", clientIP(r),
			}
			if fwd := forwardedFor(r); fwd != "" {
				attrs = append(attrs, "forwarded_for", fwd)
			}

			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// RequestObserver records HTTP request metrics.
type RequestObserver interface {
	ObserveRequest(method string, code int, elapsed time.Duration)
}

// Metrics reports every request to obs.
func Metrics(obs RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)
			obs.ObserveRequest(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}

// RateLimit limits requests per client IP with a token bucket of the given
// rate and burst.
func RateLimit(rps float64, burst int) Middleware {
	limiters := newLimiterRegistry(rate.Limit(rps), burst, defaultMaxClients)
	retryAfter := "1"
	if rps > 0 && rps < 1 {
		retryAfter = strconv.Itoa(int(1/rps + 0.5))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// defaultMaxClients caps the number of tracked client IPs.
const defaultMaxClients = 10000

// limiterRegistry hands out one rate.Limiter per client key.
type limiterRegistry struct {
	limit rate.Limit
	burst int
	max   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newLimiterRegistry(limit rate.Limit, burst, max int) *limiterRegistry {
	return &limiterRegistry{
		limit:    limit,
		burst:    burst,
		max:      max,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (r *limiterRegistry) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[key]; ok {
		return l
	}

	if len(r.limiters) >= r.max {
		r.pruneLocked()
	}

	l := rate.NewLimiter(r.limit, r.burst)
	r.limiters[key] = l
	return l
}

// pruneLocked drops limiters whose bucket has refilled; they carry no
// state. If none qualify the registry starts over.
func (r *limiterRegistry) pruneLocked() {
	now := time.Now()
	for key, l := range r.limiters {
		if l.TokensAt(now) >= float64(r.burst) {
			delete(r.limiters, key)
		}
	}
	if len(r.limiters) >= r.max {
		r.limiters = make(map[string]*rate.Limiter)
	}
}

func (r *limiterRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// writeError writes a JSON error body outside the handler package.
func writeError(w http.ResponseWriter, status int, err *domain.DomainError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", err.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    err.Code,
		"message": err.Message,
	})
}

// clientIP returns the peer address of the connection. Forwarding headers
// are client controlled and never used for limiting.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// forwardedFor returns the first X-Forwarded-For hop, for logging only.
func forwardedFor(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return r.Header.Get("X-Real-IP")
	}
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

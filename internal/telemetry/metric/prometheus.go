package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/core/service"
)

const namespace = "sitegate"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Session metrics
	IssuedTotal  prometheus.Counter
	RevokedTotal prometheus.Counter
	ExpiredTotal prometheus.Counter

	// Login metrics
	LoginAttempts *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all SiteGate metrics and the Go and
// process collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		IssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "issued_total",
			Help:      "Sessions issued after a successful login",
		}),
		RevokedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "revoked_total",
			Help:      "Sessions removed by logout",
		}),
		ExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "expired_total",
			Help:      "Sessions removed after outliving the TTL",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Admin login attempts by outcome",
		}, []string{"outcome"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.IssuedTotal,
		r.RevokedTotal,
		r.ExpiredTotal,
		r.LoginAttempts,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

// TrackActiveSessions registers the active session gauge. Call it once.
func (r *Registry) TrackActiveSessions(count func() int) {
	r.reg.MustRegister(NewSessionCollector(count))
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// SessionIssued implements memory.Observer.
func (r *Registry) SessionIssued(*domain.Session) {
	r.IssuedTotal.Inc()
}

// SessionRevoked implements memory.Observer.
func (r *Registry) SessionRevoked(*domain.Session) {
	r.RevokedTotal.Inc()
}

// SessionsExpired implements memory.Observer.
func (r *Registry) SessionsExpired(n int) {
	r.ExpiredTotal.Add(float64(n))
}

// LoginAttempt implements service.LoginObserver.
func (r *Registry) LoginAttempt(outcome service.LoginOutcome) {
	r.LoginAttempts.WithLabelValues(string(outcome)).Inc()
}

// ObserveRequest records one completed HTTP request.
func (r *Registry) ObserveRequest(method string, code int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

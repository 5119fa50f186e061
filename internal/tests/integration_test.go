package tests

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/core/service"
	"github.com/yndnr/sitegate/internal/server/httpserver"
	"github.com/yndnr/sitegate/internal/server/httpserver/handler"
	"github.com/yndnr/sitegate/internal/server/static"
	"github.com/yndnr/sitegate/internal/storage/memory"
	"github.com/yndnr/sitegate/internal/telemetry/metric"
)

type credentialTable struct {
	mu    sync.Mutex
	users map[string]string
	err   error
}

func (c *credentialTable) Match(_ context.Context, identity, secret string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	want, ok := c.users[identity]
	return ok && want == secret, nil
}

func (c *credentialTable) EnsureReady(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *credentialTable) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

type stack struct {
	server  *httptest.Server
	client  *http.Client
	store   *memory.Store
	creds   *credentialTable
	metrics *metric.Registry
}

func newStack(t *testing.T, loginRate float64, loginBurst int) *stack {
	t.Helper()

	s := &stack{
		creds:   &credentialTable{users: map[string]string{"admin": "s3cret"}},
		metrics: metric.NewRegistry(),
	}
	s.store = memory.New(memory.WithTTL(time.Hour), memory.WithObserver(s.metrics))
	s.metrics.TrackActiveSessions(s.store.Count)

	site := fstest.MapFS{
		"index.html":  {Data: []byte("<h1>gym log</h1>")},
		"classify.js": {Data: []byte("void 0")},
	}
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: handler.Config{
			Auth:     service.NewAuthService(s.creds, s.store, service.WithLoginObserver(s.metrics)),
			Sessions: service.NewSessionService(s.store),
			Static:   static.NewFS(site, static.WithFallback(true)),
			Metrics:  s.metrics.Handler(),
		},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:     s.metrics,
		LoginRate:   loginRate,
		LoginBurst:  loginBurst,
		EnableAudit: true,
	})
	s.server = httptest.NewServer(router)
	t.Cleanup(s.server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	s.client = &http.Client{Jar: jar, Timeout: 5 * time.Second}
	return s
}

func (s *stack) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func (s *stack) sessionState(t *testing.T) (bool, string) {
	t.Helper()
	resp, data := s.do(t, http.MethodGet, "/api/admin/session", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session status = %d", resp.StatusCode)
	}
	var body struct {
		Authenticated bool   `json:"authenticated"`
		Identity      string `json:"identity"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return body.Authenticated, body.Identity
}

func TestAdminFlow(t *testing.T) {
	s := newStack(t, 100, 100)

	resp, data := s.do(t, http.MethodGet, "/reports/2026", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "gym log") {
		t.Fatalf("static fallback = %d %q", resp.StatusCode, data)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("static response has no X-Request-ID")
	}

	if ok, _ := s.sessionState(t); ok {
		t.Fatal("authenticated before login")
	}

	resp, _ = s.do(t, http.MethodPost, "/api/admin/login", `{"identity":"admin","secret":"nope"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong secret status = %d, want 401", resp.StatusCode)
	}

	resp, data = s.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"s3cret"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d: %s", resp.StatusCode, data)
	}
	if ok, id := s.sessionState(t); !ok || id != "admin" {
		t.Fatalf("session after login = %v %q", ok, id)
	}

	resp, data = s.do(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "sitegate_sessions_active 1") {
		t.Errorf("metrics did not report one active session")
	}

	resp, _ = s.do(t, http.MethodPost, "/api/admin/logout", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	if ok, _ := s.sessionState(t); ok {
		t.Error("still authenticated after logout")
	}
	if s.store.Count() != 0 {
		t.Errorf("store count = %d after logout", s.store.Count())
	}

	if got := testutil.ToFloat64(s.metrics.IssuedTotal); got != 1 {
		t.Errorf("issued_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.RevokedTotal); got != 1 {
		t.Errorf("revoked_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues(string(service.OutcomeRejected))); got != 1 {
		t.Errorf("rejected attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.RequestsTotal.WithLabelValues("POST", "401")); got != 1 {
		t.Errorf("POST 401 requests = %v, want 1", got)
	}
}

func TestCredentialStoreDown(t *testing.T) {
	s := newStack(t, 100, 100)
	s.creds.fail(domain.ErrServiceUnavailable.WithCause(errors.New("dial tcp: connection refused")))

	resp, data := s.do(t, http.MethodPost, "/api/admin/login", `{"identity":"admin","secret":"s3cret"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if strings.Contains(string(data), "connection refused") {
		t.Errorf("body leaks the cause: %s", data)
	}
	if s.store.Count() != 0 {
		t.Error("failed login left a session behind")
	}

	resp, _ = s.do(t, http.MethodGet, "/ready", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", resp.StatusCode)
	}

	s.creds.fail(nil)
	resp, _ = s.do(t, http.MethodGet, "/ready", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status after recovery = %d, want 200", resp.StatusCode)
	}
}

func TestLoginRateLimit(t *testing.T) {
	s := newStack(t, 0.001, 3)

	for i := 0; i < 3; i++ {
		resp, _ := s.do(t, http.MethodPost, "/api/admin/login", `{"identity":"admin","secret":"nope"}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	resp, data := s.do(t, http.MethodPost, "/api/admin/login", `{"identity":"admin","secret":"s3cret"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429: %s", resp.StatusCode, data)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
	if s.store.Count() != 0 {
		t.Error("rate-limited login created a session")
	}

	// Other admin routes are not limited.
	if ok, _ := s.sessionState(t); ok {
		t.Error("unexpected session")
	}
}

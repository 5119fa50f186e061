package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sitegate/internal/cli/connection"
	"github.com/yndnr/sitegate/internal/core/service"
	"github.com/yndnr/sitegate/internal/server/httpserver/handler"
	"github.com/yndnr/sitegate/internal/storage/memory"
)

type fakeMatcher struct {
	mu       sync.Mutex
	users    map[string]string
	readyErr error
}

func (m *fakeMatcher) Match(_ context.Context, identity, secret string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want, ok := m.users[identity]
	return ok && want == secret, nil
}

func (m *fakeMatcher) EnsureReady(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readyErr
}

func (m *fakeMatcher) setReadyErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyErr = err
}

// testEnv runs the CLI against a real admin handler.
type testEnv struct {
	server     *httptest.Server
	matcher    *fakeMatcher
	store      *memory.Store
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		matcher:    &fakeMatcher{users: map[string]string{"admin": "s3cret"}},
		store:      memory.New(memory.WithTTL(time.Hour)),
		configPath: filepath.Join(t.TempDir(), "cli.yaml"),
	}
	env.server = httptest.NewServer(handler.New(handler.Config{
		Auth:     service.NewAuthService(env.matcher, env.store),
		Sessions: service.NewSessionService(env.store),
	}))
	t.Cleanup(env.server.Close)
	return env
}

// run executes the CLI with JSON output against the test server.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base := []string{"--server", e.server.URL, "--config", e.configPath, "-o", "json"}
	return e.runRaw(t, "", append(base, args...)...)
}

// runRaw executes the CLI with exactly args and stdin.
func (e *testEnv) runRaw(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	app := App()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"sitegate-cli"}, args...))
	return out.String(), err
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return v
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *connection.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *connection.APIError", err)
	}
	if apiErr.Status != status || apiErr.Code != code {
		t.Errorf("APIError = %d %s, want %d %s", apiErr.Status, apiErr.Code, status, code)
	}
}

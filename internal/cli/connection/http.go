package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/sitegate/internal/infra/buildinfo"
	"github.com/yndnr/sitegate/internal/server/httpserver/cookie"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL    string
	client     *http.Client
	cookieName string
	userAgent  string
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(c *HTTPClient) {
		if name != "" {
			c.cookieName = name
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithTLSConfig sets the TLS config used for https servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		if cfg != nil {
			c.client.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: cfg,
			}
		}
	}
}

// NewHTTPClient creates a new HTTP client. A server without a scheme is
// reached over http.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		cookieName: cookie.DefaultName,
		userAgent:  "sitegate-cli/" + buildinfo.Version,
		client: &http.Client{
			Timeout: DefaultTimeout,
			// Redirects would drop the cookie header.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// CookieName returns the session cookie name.
func (c *HTTPClient) CookieName() string {
	return c.cookieName
}

// Get performs a GET request, sending token as the session cookie when set.
func (c *HTTPClient) Get(ctx context.Context, path, token string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, token, nil)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path, token string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, token, body)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
	}

	return c.client.Do(req)
}

// SessionToken returns the session cookie value set by resp.
func (c *HTTPClient) SessionToken(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookieName && ck.MaxAge >= 0 {
			return ck.Value
		}
	}
	return ""
}

// APIError is an error body returned by the server.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ParseResponse decodes a JSON response body into target and closes it.
// Status codes of 400 and above become *APIError.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Status:    resp.StatusCode,
			Code:      resp.Header.Get("X-Error-Code"),
			RequestID: resp.Header.Get("X-Request-ID"),
		}
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			if body.Code != "" {
				apiErr.Code = body.Code
			}
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

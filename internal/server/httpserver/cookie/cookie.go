// Package cookie parses Cookie headers and writes the admin session cookie.
package cookie

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultName is the admin session cookie name.
const DefaultName = "sitegate_admin"

// Parse parses a Cookie header into a name to value map.
//
// Malformed pairs are skipped. When a name repeats, the first value wins,
// matching how browsers order the most specific cookie first.
func Parse(header string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cookies, err := http.ParseCookie(part)
		if err != nil {
			continue
		}
		for _, c := range cookies {
			if _, seen := out[c.Name]; !seen {
				out[c.Name] = c.Value
			}
		}
	}
	return out
}

// Token returns the value of the named cookie on r, or "" when absent.
func Token(r *http.Request, name string) string {
	headers := r.Header.Values("Cookie")
	if len(headers) == 0 {
		return ""
	}
	return Parse(strings.Join(headers, "; "))[name]
}

// Config describes the session cookie attributes.
type Config struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// DefaultConfig returns the default session cookie attributes.
func DefaultConfig() Config {
	return Config{
		Name:     DefaultName,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	}
}

// Set writes the session cookie with Max-Age equal to ttl in whole seconds.
func (c Config) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     c.Path,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// Clear expires the session cookie on the client (Max-Age=0).
func (c Config) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// ParseSameSite converts a config value to http.SameSite.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid same_site %q (want strict, lax or none)", s)
	}
}

package static

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// DefaultRoot is the web root used when none is configured.
const DefaultRoot = "./public"

const indexFile = "index.html"

// contentTypes covers the asset types shipped in the web root.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType returns the Content-Type for a file name.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Responder serves files from a file system root.
type Responder struct {
	fsys     fs.FS
	fallback bool
	logger   *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder)

// WithFallback toggles serving the root index.html for unknown paths.
func WithFallback(enabled bool) Option {
	return func(s *Responder) {
		s.fallback = enabled
	}
}

// WithLogger sets the responder logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Responder) {
		if l != nil {
			s.logger = l
		}
	}
}

// New serves the directory root.
func New(root string, opts ...Option) *Responder {
	if root == "" {
		root = DefaultRoot
	}
	return NewFS(os.DirFS(root), opts...)
}

// NewFS serves fsys.
func NewFS(fsys fs.FS, opts ...Option) *Responder {
	s := &Responder{
		fsys:     fsys,
		fallback: true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		plainError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, ok := resolve(r.URL.Path)
	if !ok {
		plainError(w, http.StatusForbidden, "forbidden")
		return
	}

	info, err := fs.Stat(s.fsys, name)
	if err != nil {
		if s.fallback && s.isFile(indexFile) {
			s.serveFile(w, r, indexFile)
			return
		}
		plainError(w, http.StatusNotFound, "not found")
		return
	}

	if info.IsDir() {
		index := path.Join(name, indexFile)
		if !s.isFile(index) {
			plainError(w, http.StatusNotFound, "not found")
			return
		}
		name = index
	}

	s.serveFile(w, r, name)
}

// resolve maps a decoded URL path to an fs.FS name. It reports false when
// the path climbs above the root.
func resolve(urlPath string) (string, bool) {
	name := path.Clean("./" + urlPath)
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", false
	}
	return name, true
}

func (s *Responder) isFile(name string) bool {
	info, err := fs.Stat(s.fsys, name)
	return err == nil && info.Mode().IsRegular()
}

func (s *Responder) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		s.logger.Error("static file read failed", "file", name, "error", err)
		plainError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var modTime time.Time
	if info, err := fs.Stat(s.fsys, name); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Type", ContentType(name))
	http.ServeContent(w, r, name, modTime, bytes.NewReader(data))
}

func plainError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// CheckRoot reports whether root is an existing directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("static root %s is not a directory", root)
	}
	return nil
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/sitegate/internal/infra/buildinfo"
)

// readyTimeout bounds the credential store check behind GET /ready.
const readyTimeout = 3 * time.Second

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	h.writeJSON(w, r, http.StatusOK, &HealthResponse{
		Status:    "healthy",
		Version:   info.Version,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
		Time:      time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. It answers 503 until the credential
// store is reachable.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.auth.Ready(ctx); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, &HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

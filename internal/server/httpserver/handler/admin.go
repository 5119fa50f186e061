package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yndnr/sitegate/internal/core/domain"
	"github.com/yndnr/sitegate/internal/core/service"
	"github.com/yndnr/sitegate/internal/server/httpserver/cookie"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
)

// handleLogin handles POST /api/admin/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, domain.ErrPayloadTooLarge)
			return
		}
		h.writeError(w, r, domain.ErrBadRequest.WithDetails("invalid JSON body"))
		return
	}

	resp, err := h.auth.Login(r.Context(), &service.LoginRequest{
		Identity: req.identity(),
		Secret:   req.secret(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.cookie.Set(w, resp.Token, resp.TTL)
	h.writeJSON(w, r, http.StatusOK, &LoginResponse{
		Success:   true,
		Message:   "login successful",
		ExpiresAt: &resp.ExpiresAt,
	})
}

// handleLogout handles POST /api/admin/logout. It always succeeds.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), cookie.Token(r, h.cookie.Name))
	h.cookie.Clear(w)
	h.writeJSON(w, r, http.StatusOK, &LogoutResponse{Success: true})
}

// handleSession handles GET /api/admin/session.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	tok := cookie.Token(r, h.cookie.Name)
	if tok == "" {
		h.writeJSON(w, r, http.StatusOK, &SessionResponse{Authenticated: false})
		return
	}

	info, err := h.sessions.Describe(r.Context(), tok)
	if err != nil {
		logger.L(r.Context()).Debug("stale admin cookie", "reason", err)
		h.cookie.Clear(w)
		h.writeJSON(w, r, http.StatusOK, &SessionResponse{Authenticated: false})
		return
	}

	h.writeJSON(w, r, http.StatusOK, &SessionResponse{
		Authenticated: true,
		Identity:      info.Identity,
		ExpiresAt:     &info.ExpiresAt,
	})
}

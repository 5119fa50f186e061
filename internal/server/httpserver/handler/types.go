package handler

import "time"

// LoginRequest is the request body for POST /api/admin/login.
//
// The admin page posts username/password; identity/secret are accepted too.
type LoginRequest struct {
	Identity string `json:"identity,omitempty"`
	Secret   string `json:"secret,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (r *LoginRequest) identity() string {
	if r.Identity != "" {
		return r.Identity
	}
	return r.Username
}

func (r *LoginRequest) secret() string {
	if r.Secret != "" {
		return r.Secret
	}
	return r.Password
}

// LoginResponse is the response body for POST /api/admin/login.
type LoginResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// LogoutResponse is the response body for POST /api/admin/logout.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// SessionResponse is the response body for GET /api/admin/session.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Identity      string     `json:"identity,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Time      string `json:"time"`
}

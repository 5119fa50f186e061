// Package httpserver hosts the SiteGate HTTP surface.
//
// NewRouter assembles the handler package behind the middleware chain
// (request IDs, metrics, audit logging, panic recovery, and a per-IP
// limit on login attempts). Server wraps http.Server with optional TLS
// and graceful shutdown.
package httpserver

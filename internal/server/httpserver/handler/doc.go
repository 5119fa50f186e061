// Package handler provides HTTP request handlers for SiteGate.
//
//   - admin.go: admin login, logout and session check
//   - health.go: liveness and readiness
//   - handler.go: routing, JSON writing and error mapping
//
// Every path not claimed by the API falls through to the static responder.
// Error bodies have the shape {success:false, message, code}; the code is
// repeated in the X-Error-Code header.
package handler

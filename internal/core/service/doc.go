// Package service provides domain services for SiteGate.
//
// Domain services orchestrate the domain model and define the storage
// interfaces they depend on, so storage backends are injected.
//
// This package contains:
//
//   - SessionService: session checks and logout over a SessionRepository
//   - AuthService: the admin login gate, one credential query per attempt
//
// A failed login never creates a session, and nothing here caches a
// validity decision beyond the call that made it.
package service

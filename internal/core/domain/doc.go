// Package domain defines the core domain models for SiteGate.
//
// Domain models are pure value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - Session: an authenticated admin session and its expiry rule
//   - Errors: coded domain errors shared by the service and transport layers
//
// A session is valid while its age is at most the store TTL. The plaintext
// token is never part of the model; sessions carry only its digest.
package domain

// Package memory provides the in-process session store for SiteGate.
//
// Sessions live in a single map keyed by the SHA-256 digest of their token
// and are lost on restart. One mutex guards every operation, so Issue,
// Validate, Revoke and Sweep are atomic with respect to each other.
//
// Expiry is lazy: Validate removes an expired entry it finds, and Issue
// sweeps all expired entries before minting a new token. There is no
// background timer.
package memory

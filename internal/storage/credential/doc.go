// Package credential checks admin credentials against PostgreSQL.
//
// The store runs exactly one parameterized query per login attempt, bound
// to the submitted identity and the encoded secret. A non-empty result set
// means the credentials match. The pgx pool is opened lazily on first use;
// any connection, configuration or query failure surfaces as
// domain.ErrServiceUnavailable.
package credential

// Package connection is the sitegate-cli HTTP client for the admin API.
//
// The admin session token travels in the session cookie; the CLI reads it
// from the login response and sends it back on later calls.
package connection

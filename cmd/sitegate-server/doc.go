// Package main provides the entry point for sitegate-server.
//
// sitegate-server serves a static web root and a small admin API: login,
// logout and session check against an in-memory session store, with
// credentials checked by one parameterized PostgreSQL query.
//
// Usage:
//
//	sitegate-server --config /etc/sitegate/server.yaml
//
// Every setting can be overridden with SITEGATE_ environment variables,
// using __ between nesting levels (SITEGATE_CREDENTIALS__DSN). PORT
// replaces the port of server.http.addr.
package main

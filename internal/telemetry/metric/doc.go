// Package metric provides Prometheus metrics for SiteGate.
//
//   - prometheus.go: the registry, counters and the /metrics handler
//   - collector.go: the active session collector
//
// Registry implements the session store observer and the login observer,
// so the store and AuthService feed it directly. Go runtime and process
// collectors are registered alongside.
package metric

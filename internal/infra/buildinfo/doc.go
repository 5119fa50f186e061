// Package buildinfo reports the version, commit and build time of the
// running SiteGate binary. The server exposes it on GET /health and the
// CLI prints it from `sitegate-cli version`.
package buildinfo

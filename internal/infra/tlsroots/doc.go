// Package tlsroots manages TLS material for sitegate.
//
//   - reloader.go: serving certificate for HTTPS, reloaded when the cert or
//     key file changes on disk
//   - roots.go: trusted roots for the CLI, system pool plus an optional CA
//     file for self-signed deployments
package tlsroots

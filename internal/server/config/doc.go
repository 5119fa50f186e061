// Package config defines the SiteGate server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking for logs
//   - load.go: file, environment and PORT layering via confloader
package config

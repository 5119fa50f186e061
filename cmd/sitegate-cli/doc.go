// Package main provides the entry point for sitegate-cli.
//
// sitegate-cli talks to a running sitegate-server over its admin HTTP API.
// See internal/cli/command for the command set.
package main

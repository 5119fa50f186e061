// Package config stores sitegate-cli defaults and the last admin session.
//
// The file lives at ~/.sitegate/cli.yaml with mode 0600 because it holds
// a live session token.
package config

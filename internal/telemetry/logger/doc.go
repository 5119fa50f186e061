// Package logger provides structured logging for SiteGate.
//
// It wraps log/slog with JSON or text output, a process wide level that can
// be changed at runtime, request ID propagation through context, and a
// ReplaceAttr hook that redacts sensitive attributes.
//
// Redaction is key based. Values logged under keys containing token,
// secret, password, cookie, pepper or authorization are replaced with
// ***REDACTED***. Values under a dsn key keep their host but lose the
// password.
//
// SetDefault also installs the logger as the slog default, so components
// that accept a *slog.Logger get redaction through slog.Default().
package logger

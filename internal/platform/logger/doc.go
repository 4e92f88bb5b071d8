// Package logger provides structured logging functionality for the
// entrypoint. Log records go to stderr as JSON; stdout is reserved for the
// phase status lines and, after hand-off, for the launched service.
package logger

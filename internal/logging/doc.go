// Package logging assembles the structured slog loggers used across
// reidsubmit commands and internal components.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes small attribute helpers so components tag log lines uniformly.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging

// Package logging assembles structured slog loggers and formatting helpers used
// across ascsh.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and tags every record with the shell's session ID so daemon-side
// and client-side logs can be correlated. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing guarantees as the rest of the shell.
package logging

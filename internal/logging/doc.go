// Package logging assembles structured slog loggers and formatting helpers used
// across rejoin.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standard field keys (file, frame, chain, run_id)
// so every component tags its lines the same way. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging

// Package logging builds the process-wide structured logger.
//
// The service logs through log/slog everywhere; this package only owns
// the handler construction (level, format, destination) and the request
// id plumbing through context. Components derive their own loggers with
// With("component", ...).
package logging

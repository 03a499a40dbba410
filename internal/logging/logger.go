// Package logging defines the minimal structured-logging contract used
// across lifetrack. Sync failures are reported through it rather than
// surfaced as errors to the user, so implementations must be safe to call
// from concurrent goroutines.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// interpreted as key-value pairs:
//
//	log.Warn(ctx, "push failed", "kind", kind, "err", err)
type Logger interface {
	// Debug logs developer-level detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but recoverable conditions, e.g. a sync sweep that
	// degraded to a no-op because the cloud was unreachable.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

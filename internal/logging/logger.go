// Package logging provides the structured logger used across hioload-aio.
//
// The reactor, timer and file writer accept a Logger through their options
// and fall back to NewNopLogger when none is given.
package logging

// Logger is a leveled, structured logger. Arguments are key/value pairs:
//
//	logger.Debug("write attempt", "fd", fd, "offset", off)
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that adds args to every record.
	With(args ...any) Logger
}

package middleware

import (
	"log/slog"
	"runtime/debug"
)

// Recover runs fn and logs instead of crashing if it panics. It reports
// whether fn returned normally.
func Recover(logger *slog.Logger, event string, fn func()) (ok bool) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("panic recovered",
				slog.Any("error", err),
				slog.String("stack", string(debug.Stack())),
				slog.String("event", event),
			)
			ok = false
		}
	}()

	fn()
	return true
}

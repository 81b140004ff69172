package changelog

// debugLogger receives debug messages when debug mode is enabled.
// By default, it's a no-op.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for merge runs.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

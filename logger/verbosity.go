package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Number of -v flags on the command line
const (
	VerbosityUser  = iota // results and errors only
	VerbosityInfo         // -v: downloads, skipped graphs, batch counts
	VerbosityDebug        // -vv: listing pages, cache hits, migrations
	VerbosityTrace        // -vvv: every file a download leaves behind
)

var verbosityNames = [...]string{"user", "info", "debug", "trace"}

// Verbosity is the -v count the logger was last initialised with
var Verbosity int

// VerbosityToLevel maps a -v count to a zap level. Trace has no zap level of
// its own; it logs at debug behind Tracing.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Tracing reports whether -vvv was given
func Tracing() bool {
	return Verbosity >= VerbosityTrace
}

// LevelName names a -v count for log and help output
func LevelName(verbosity int) string {
	switch {
	case verbosity < 0:
		return "unknown"
	case verbosity == VerbosityUser:
		return verbosityNames[VerbosityUser]
	default:
		name := verbosityNames[min(verbosity, VerbosityTrace)]
		return name + " (-" + strings.Repeat("v", verbosity) + ")"
	}
}

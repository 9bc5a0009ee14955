// Package logger holds the process-wide zap logger. Commands initialise it
// once from the -v and --log-json flags; packages take component loggers
// from it.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is a no-op until Initialize runs, so library code and tests can
	// log unconditionally.
	Logger = zap.NewNop().Sugar()
	// JSONOutput is true when logs are JSON lines
	JSONOutput bool
)

// Initialize replaces Logger. Logs always go to stderr; stdout belongs to
// command output such as catalogs and tables.
func Initialize(jsonOutput bool, verbosity int) error {
	level := VerbosityToLevel(verbosity)

	var (
		zl  *zap.Logger
		err error
	)
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		if zl, err = cfg.Build(); err != nil {
			return err
		}
	} else {
		zl = zap.New(zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level))
	}

	Logger = zl.Sugar()
	JSONOutput = jsonOutput
	Verbosity = verbosity
	Logger.Debugw("Logger initialized", "verbosity", LevelName(verbosity), "json", jsonOutput)
	return nil
}

func consoleEncoder() zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// Cleanup flushes buffered entries
func Cleanup() {
	_ = Logger.Sync()
}

// Warnw logs on the global logger
func Warnw(msg string, keysAndValues ...interface{}) {
	Logger.Warnw(msg, keysAndValues...)
}

// Package log is the structured logging layer of flushot.
//
// Logger has the shape of log/slog: a message followed by alternating
// key/value fields. ZerologLogger writes JSON (or console) lines through
// rs/zerolog; TestLogger keeps records in memory for assertions. Field keys
// live in attributes.go.
//
//	logger := log.GetLogger().With(log.RunIDKey, report.RunID)
//	logger.Info("Evaluation finished",
//	    log.TargetKey, "h1n1_vaccine",
//	    log.ROCAUCKey, 0.83,
//	)
package log

import "context"

// Logger is implemented by ZerologLogger and TestLogger.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)

	// Error logs a failure. A leading error argument is recorded under
	// ErrAttrKey together with its stack trace:
	//
	//	logger.Error("Submission rejected", err, log.TableKey, "submission_format")
	Error(msg string, fields ...any)

	// With returns a child logger that adds fields to every record.
	With(fields ...any) Logger

	Enabled(ctx context.Context, level Level) bool
}

// Level uses the numeric values of slog.Level.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// LoggerProvider hands out loggers that share one sink and level.
type LoggerProvider interface {
	GetLogger() Logger
	// GetLoggerWithName tags the logger with ComponentKey=name.
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

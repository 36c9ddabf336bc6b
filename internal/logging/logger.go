// Package logging provides centralized logging functionality for the application.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug for detailed troubleshooting information.
	LevelDebug LogLevel = "debug"
	// LevelInfo for general operational information.
	LevelInfo LogLevel = "info"
	// LevelWarn for potentially harmful situations.
	LevelWarn LogLevel = "warn"
	// LevelError for error events that might still allow the application to continue.
	LevelError LogLevel = "error"
)

// SlogLevelFatal marks failures that end a build step. It sits above
// slog.LevelError and is always emitted.
const SlogLevelFatal = slog.Level(12)

var (
	// defaultLogger is the default logger instance.
	defaultLogger *slog.Logger

	// level is shared by every handler so it can change after setup.
	level = new(slog.LevelVar)
)

// init initializes the default logger.
func init() {
	// Get log level from environment variable, default to "info"
	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = string(LevelInfo)
	}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		SetupJSONLogger(os.Stderr, LogLevel(logLevelStr))
		return
	}
	SetupLogger(os.Stderr, LogLevel(logLevelStr))
}

// parseLevel maps a LogLevel to its slog counterpart, defaulting to info.
func parseLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(lvl LogLevel) *slog.HandlerOptions {
	level.Set(parseLevel(lvl))
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}
			if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= SlogLevelFatal {
				a.Value = slog.StringValue("FATAL")
			}
			return a
		},
	}
}

// SetupLogger configures a text logger with the specified output and level.
func SetupLogger(w io.Writer, level LogLevel) {
	defaultLogger = slog.New(slog.NewTextHandler(w, handlerOptions(level)))
	slog.SetDefault(defaultLogger)
}

// SetupJSONLogger configures a JSON logger, for CI systems that ingest
// structured output.
func SetupJSONLogger(w io.Writer, level LogLevel) {
	defaultLogger = slog.New(slog.NewJSONHandler(w, handlerOptions(level)))
	slog.SetDefault(defaultLogger)
}

// SetLevel changes the level of the current logger, keeping its output and format.
func SetLevel(lvl LogLevel) {
	level.Set(parseLevel(LogLevel(strings.ToLower(string(lvl)))))
}

// Debug logs a message at debug level.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs a message at info level.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a message at warn level.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs a message at error level.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// Fatal logs a message at fatal level. Unlike log.Fatal it does not exit;
// the caller decides how the failure ends the step.
func Fatal(msg string, args ...any) {
	defaultLogger.Log(context.Background(), SlogLevelFatal, msg, args...)
}

// GetLogger returns the default logger.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// MaskSensitive masks sensitive data for logging.
func MaskSensitive(value string) string {
	if value == "" {
		return "<not set>"
	}
	if len(value) <= 4 {
		return "<set>"
	}
	return value[:4] + "..." + strings.Repeat("*", 3)
}

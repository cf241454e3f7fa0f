package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// ParseLevel maps a configured level name to a slog level. Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w in "json" or text format.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Initialize sets up the global logger on stdout
func Initialize(level, format string) {
	SetDefault(New(os.Stdout, level, format))
}

// SetDefault replaces the global logger
func SetDefault(l *slog.Logger) {
	defaultLogger = l
	slog.SetDefault(l)
}

// Get returns the global logger, initializing it with defaults on first use
func Get() *slog.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// EnterMethod logs entry into a lifecycle operation
func EnterMethod(methodName string, args ...any) {
	Get().Debug("→ Method entered", append([]any{"method", methodName, "event", "enter"}, args...)...)
}

// ExitMethod logs a successful exit from a lifecycle operation
func ExitMethod(methodName string, args ...any) {
	Get().Debug("← Method exited", append([]any{"method", methodName, "event", "exit"}, args...)...)
}

// ExitMethodWithError logs a failed exit from a lifecycle operation
func ExitMethodWithError(methodName string, err error, args ...any) {
	Get().Error("← Method exited with error", append([]any{"method", methodName, "event", "exit", "error", err}, args...)...)
}

// DatabaseCall logs a store statement at debug level
func DatabaseCall(operation, query string, args ...any) {
	Get().Debug("→ Database call", append([]any{"operation", operation, "query", query}, args...)...)
}

// DatabaseResult logs the outcome of a store statement
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	allArgs := append([]any{"operation", operation, "rows_affected", rowsAffected}, args...)
	if err != nil {
		Get().Error("← Database call failed", append(allArgs, "error", err)...)
		return
	}
	Get().Debug("← Database call succeeded", allArgs...)
}

// ExternalServiceCall logs a call to kafka, redis or sendgrid at debug level
func ExternalServiceCall(service, operation string, args ...any) {
	Get().Debug("→ External service call", append([]any{"service", service, "operation", operation}, args...)...)
}

// ExternalServiceResult logs the outcome of an external call
func ExternalServiceResult(service, operation string, err error, args ...any) {
	allArgs := append([]any{"service", service, "operation", operation}, args...)
	if err != nil {
		Get().Error("← External service call failed", append(allArgs, "error", err)...)
		return
	}
	Get().Debug("← External service call succeeded", allArgs...)
}

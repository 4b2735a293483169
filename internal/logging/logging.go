// Package logging is configtpl's log/slog front end.
//
// Builds log each merged source at DEBUG and a summary at INFO. The
// process-wide logger is read from the environment on first use:
//
//	CONFIGTPL_LOG_LEVEL   debug, info, warn (default) or error
//	CONFIGTPL_LOG_FORMAT  text (default) or json
//
// Rendered configuration and MCP stdio traffic both own stdout, so logs
// always go to stderr.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Environment variables read by NewFromEnv.
const (
	LogLevelEnvVar  = "CONFIGTPL_LOG_LEVEL"
	LogFormatEnvVar = "CONFIGTPL_LOG_FORMAT"
)

// Fallbacks for unset or unrecognised environment values.
const (
	DefaultLevel  = slog.LevelWarn
	DefaultFormat = "text"
)

// Logger is what builders, the MCP server and the CLI log through.
// Arguments after msg are slog key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With binds attributes, such as the source locator, to every
	// subsequent record.
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s slogLogger) With(args ...any) Logger {
	return slogLogger{l: s.l.With(args...)}
}

var (
	mu            sync.Mutex
	defaultLogger Logger
)

// Default returns the process-wide logger, building it from the
// environment the first time.
func Default() Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewFromEnv()
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger. The serve command calls it
// once the --log-level flag is known.
func SetDefault(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// ResetDefault drops the process-wide logger so the next Default call
// reads the environment again.
func ResetDefault() {
	SetDefault(nil)
}

// NewFromEnv builds a stderr logger from CONFIGTPL_LOG_LEVEL and
// CONFIGTPL_LOG_FORMAT.
func NewFromEnv() Logger {
	return NewFromEnvWithLevel("")
}

// NewFromEnvWithLevel is NewFromEnv with level, when non-empty, taking
// the place of CONFIGTPL_LOG_LEVEL.
func NewFromEnvWithLevel(level string) Logger {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	format := os.Getenv(LogFormatEnvVar)
	if format == "" {
		format = DefaultFormat
	}
	return New(os.Stderr, ParseLevel(level), format)
}

// New writes records at level and above to w. format "json" selects the
// JSON handler; anything else is text.
func New(w io.Writer, level slog.Level, format string) Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slogLogger{l: slog.New(slog.NewJSONHandler(w, opts))}
	}
	return slogLogger{l: slog.New(slog.NewTextHandler(w, opts))}
}

// FromSlog adapts a caller-owned slog.Logger, as passed to
// configtpl.WithSlogLogger. nil yields Nop.
func FromSlog(l *slog.Logger) Logger {
	if l == nil {
		return Nop()
	}
	return slogLogger{l: l}
}

// ParseLevel maps a level name to a slog.Level, ignoring case and
// surrounding space. Unknown names give DefaultLevel.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return DefaultLevel
}

// LevelString is the inverse of ParseLevel for the four named levels.
func LevelString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }

// Nop discards everything.
func Nop() Logger {
	return nopLogger{}
}

type ctxKey struct{}

// IntoContext returns a copy of ctx carrying l.
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or fallback when there is
// none. A nil fallback yields Nop.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		return Nop()
	}
	return fallback
}

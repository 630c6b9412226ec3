package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above slog.LevelError and is rendered as "CRITICAL".
// It marks conditions that need an operator, such as corrupt ledger rows.
const LevelCritical = slog.Level(12)

const serviceName = "opsboard"

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	// BusinessError records an expected failure caused by the caller, at WARN.
	BusinessError(message string, err error, args ...any)
	// InternalError records a failure of the service itself, at ERROR.
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

var levelsByName = map[string]slog.Level{
	"debug":    slog.LevelDebug,
	"info":     slog.LevelInfo,
	"warn":     slog.LevelWarn,
	"warning":  slog.LevelWarn,
	"error":    slog.LevelError,
	"critical": LevelCritical,
	"fatal":    LevelCritical,
}

type contextKey struct{}

type slogLogger struct {
	base *slog.Logger
}

// NewFromEnv builds the process logger from ENV, LOG_LEVEL and LOG_FORMAT.
// It runs before configuration is loaded so that loading can be logged.
// Output goes to stderr because the report command prints JSON on stdout.
func NewFromEnv() Logger {
	env := normalizeValue(os.Getenv("ENV"))
	log := New(os.Stderr, parseLevel(os.Getenv("LOG_LEVEL"), env), parseFormat(os.Getenv("LOG_FORMAT")))
	return log.With("service", serviceName)
}

// Discard returns a Logger that drops everything. Meant for tests and for
// commands whose stdout carries data.
func Discard() Logger {
	return &slogLogger{base: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NewContext returns a copy of ctx carrying log.
func NewContext(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the Logger stored by NewContext, or fallback.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if log, ok := ctx.Value(contextKey{}).(Logger); ok && log != nil {
		return log
	}
	return fallback
}

// New returns a Logger writing to output. Any format other than "json" is
// rendered as logfmt-style text.
func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{Level: level, ReplaceAttr: renameCritical}

	if normalizeValue(format) == "json" {
		return &slogLogger{base: slog.New(slog.NewJSONHandler(output, options))}
	}
	return &slogLogger{base: slog.New(slog.NewTextHandler(output, options))}
}

func (l *slogLogger) Debug(message string, args ...any) { l.log(slog.LevelDebug, message, args) }
func (l *slogLogger) Info(message string, args ...any) { l.log(slog.LevelInfo, message, args) }
func (l *slogLogger) Warn(message string, args ...any) { l.log(slog.LevelWarn, message, args) }
func (l *slogLogger) Error(message string, args ...any) { l.log(slog.LevelError, message, args) }
func (l *slogLogger) Critical(message string, args ...any) {
	l.log(LevelCritical, message, args)
}

func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	l.logError(slog.LevelWarn, message, err, args)
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	l.logError(slog.LevelError, message, err, args)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func (l *slogLogger) log(level slog.Level, message string, args []any) {
	l.base.Log(context.Background(), level, message, args...)
}

// logError is a no-op for a nil err so call sites can log unconditionally.
func (l *slogLogger) logError(level slog.Level, message string, err error, args []any) {
	if err == nil {
		return
	}
	l.log(level, message, append([]any{"err", err}, args...))
}

// parseLevel maps LOG_LEVEL to a slog level. Empty, unknown and "info"
// values mean info, or debug when ENV=development.
func parseLevel(value string, env string) slog.Level {
	value = normalizeValue(value)
	if level, ok := levelsByName[value]; ok && value != "info" {
		return level
	}
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func parseFormat(value string) string {
	if format := normalizeValue(value); format == "text" {
		return format
	}
	return "json"
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func renameCritical(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}

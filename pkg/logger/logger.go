package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type traceKey struct{}

var log atomic.Pointer[slog.Logger]

func init() {
	log.Store(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

// Init installs the process logger. Production gets JSON lines, everything
// else gets text. LOG_LEVEL overrides the default info level.
func Init(env string) {
	InitWithWriter(env, os.Getenv("LOG_LEVEL"), os.Stdout)
}

func InitWithWriter(env, level string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(env) {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	log.Store(l)
	slog.SetDefault(l)
}

// ParseLogLevel converts a string log level to slog.Level.
// Defaults to slog.LevelInfo for unrecognized strings.
func ParseLogLevel(level string) slog.Level {
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

// Get returns the process logger.
func Get() *slog.Logger { return log.Load() }

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// WithTraceID stores a request trace id for FromContext.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// FromContext returns the process logger tagged with the request trace id,
// if there is one.
func FromContext(ctx context.Context) *slog.Logger {
	l := Get()
	if id := TraceID(ctx); id != "" {
		return l.With("trace_id", id)
	}
	return l
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config controls handler selection and verbosity.
type Config struct {
	Level     string // debug, info, warn, error
	JSON      bool
	Output    io.Writer // defaults to os.Stderr
	AddSource bool
}

// DefaultConfig is JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", JSON: true, Output: os.Stderr}
}

// Logger wraps slog so call sites can carry request-scoped attributes
// without threading *slog.Logger everywhere.
type Logger struct {
	*slog.Logger
	config Config
}

var global *Logger

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger from config. The first logger built becomes the
// process-wide default used by GetGlobal.
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	l := &Logger{Logger: slog.New(handler), config: config}
	if global == nil {
		global = l
	}
	return l
}

// SetGlobal replaces the process-wide default.
func SetGlobal(l *Logger) {
	global = l
}

// GetGlobal returns the process-wide default, building one lazily so library
// code can log before main finishes wiring.
func GetGlobal() *Logger {
	if global == nil {
		global = New(DefaultConfig())
	}
	return global
}

// LogError records err under the "error" key ahead of any extra attributes.
func (l *Logger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append([]any{"error", err.Error()}, args...)...)
}

// WithRequestID returns a child logger tagged with the request identifier.
// A blank identifier returns the receiver unchanged.
func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return &Logger{Logger: l.With("request_id", requestID), config: l.config}
}

// WithWallet returns a child logger tagged with the caller's wallet address.
func (l *Logger) WithWallet(wallet string) *Logger {
	if wallet == "" {
		return l
	}
	return &Logger{Logger: l.With("wallet", wallet), config: l.config}
}

// LogRequest emits the per-request access line.
func (l *Logger) LogRequest(method, path string, status int, latency time.Duration) {
	l.Info("request completed",
		"method", method,
		"path", path,
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
}

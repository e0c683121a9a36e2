package relayq

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Logger is the minimal structured logging interface used for debug output.
// The library stays quiet unless a logger is supplied and debug is enabled.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type slogLogger struct {
	l *slog.Logger
}

// NewSimpleLogger returns a colorized console logger suitable for
// development use.
func NewSimpleLogger() Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})
	return &slogLogger{l: slog.New(handler)}
}

// NewSlogLogger adapts an existing *slog.Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, keysAndValues ...any) {
	s.l.Debug(msg, keysAndValues...)
}

func (s *slogLogger) Info(msg string, keysAndValues ...any) {
	s.l.Info(msg, keysAndValues...)
}

func (s *slogLogger) Warn(msg string, keysAndValues ...any) {
	s.l.Warn(msg, keysAndValues...)
}

func (s *slogLogger) Error(msg string, keysAndValues ...any) {
	s.l.Error(msg, keysAndValues...)
}

// DebugConfig gates per-concern debug logging.
type DebugConfig struct {
	Enabled     bool
	LogRequests bool
	LogRetries  bool
	LogCache    bool
	LogQueue    bool
}

// DefaultDebugConfig enables all concerns but leaves debug itself off.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		LogRequests: true,
		LogRetries:  true,
		LogCache:    true,
		LogQueue:    true,
	}
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu  sync.RWMutex
	log = slog.New(slog.NewJSONHandler(os.Stdout, nil))
)

// Init configures the process logger to write JSON lines to stdout at the
// given level (DEBUG, INFO, WARN, ERROR).
func Init(level string) {
	SetOutput(os.Stdout, level)
	Info("logger initialized", map[string]any{"level": strings.ToUpper(level)})
}

// SetOutput redirects log output; tests use it to capture lines.
func SetOutput(w io.Writer, level string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})

	mu.Lock()
	log = slog.New(h)
	mu.Unlock()
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func attrs(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func Debug(msg string, fields map[string]any) {
	current().Debug(msg, attrs(fields)...)
}

func Info(msg string, fields map[string]any) {
	current().Info(msg, attrs(fields)...)
}

func Warn(msg string, fields map[string]any) {
	current().Warn(msg, attrs(fields)...)
}

func Error(msg string, fields map[string]any) {
	current().Error(msg, attrs(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	current().Error(msg, attrs(fields)...)
	os.Exit(1)
}

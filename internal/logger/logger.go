package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init configures the package logger to write JSON to stdout at the level named by LOG_LEVEL.
func Init() {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}
	log = New(NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(log)
}

func New(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

func NewJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Infof(format string, v ...any) {
	log.Info(fmt.Sprintf(format, v...))
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

func Errorf(format string, v ...any) {
	log.Error(fmt.Sprintf(format, v...))
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Debugf(format string, v ...any) {
	log.Debug(fmt.Sprintf(format, v...))
}

func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	log.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

func WithError(err error) *slog.Logger {
	return log.With("error", err)
}

func WithFields(fields map[string]interface{}) *slog.Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return log.With(args...)
}

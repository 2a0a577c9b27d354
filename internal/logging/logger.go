// Package logging provides the leveled, structured logger used across the service.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]interface{}

type Logger struct {
	level Level
	sl    *slog.Logger
}

// New creates a logger writing JSON lines to stderr. Stdout is left alone
// because MCP mode speaks JSON-RPC over it.
func New(level Level) *Logger {
	return NewWithWriter(level, os.Stderr)
}

func NewWithWriter(level Level, w io.Writer) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	return &Logger{level: level, sl: slog.New(h)}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func WithField(key string, value interface{}) Fields {
	return Fields{key: value}
}

func WithFields(fields map[string]interface{}) Fields {
	return Fields(fields)
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(slog.LevelDebug, msg, fields)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(slog.LevelInfo, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(slog.LevelWarn, msg, fields)
}

func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(slog.LevelError, msg, fields)
}

func (l *Logger) log(level slog.Level, msg string, fields []Fields) {
	if l == nil || l.sl == nil {
		return
	}
	ctx := context.Background()
	if !l.sl.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0)
	for _, f := range fields {
		for k, v := range f {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	l.sl.LogAttrs(ctx, level, msg, attrs...)
}

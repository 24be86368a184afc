// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls handler format, level and optional file output.
type Options struct {
	Level      string
	Format     string // "json" or "text"
	File       string // empty logs to stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var levelVar = new(slog.LevelVar)

// Init installs the default logger and returns a closer for the log file.
func Init(opts Options) func() error {
	levelVar.Set(ParseLevel(opts.Level))

	var w io.Writer = os.Stderr
	closer := func() error { return nil }
	if opts.File != "" {
		rot := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, rot)
		closer = rot.Close
	}

	handlerOpts := &slog.HandlerOptions{Level: levelVar}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(w, handlerOpts)
	} else {
		h = slog.NewJSONHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(h))
	return closer
}

// SetLevel changes the level at runtime.
func SetLevel(level string) {
	levelVar.Set(ParseLevel(level))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
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

// For returns a logger tagged with the component name. It resolves the
// default logger on every call so Init may run after package init.
func For(component string) *Logger {
	return &Logger{component: component}
}

// Logger defers to slog.Default so components can be created at package init.
type Logger struct {
	component string
}

func (l *Logger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

func (l *Logger) Debug(msg string, args ...any) { l.base().Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base().Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base().Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base().Error(msg, args...) }

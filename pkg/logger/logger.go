package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewWriterLogger builds a console logger that writes to an io.Writer.
// Debug events are dropped unless verbose is set.
func NewWriterLogger(w io.Writer, verbose bool) Logger {
	if w == nil {
		return NopLogger{}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	return zerologLogger{zl: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// New picks the console or JSON logger by format name. Unknown formats
// fall back to the console logger.
func New(w io.Writer, format string, verbose bool) Logger {
	if format == "json" {
		return NewJSONLogger(w, verbose)
	}
	return NewWriterLogger(w, verbose)
}

// NewJSONLogger builds a logger emitting one JSON object per line.
func NewJSONLogger(w io.Writer, verbose bool) Logger {
	if w == nil {
		return NopLogger{}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerologLogger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// With returns a logger that attaches key=value to every event. Loggers not
// backed by zerolog are returned unchanged.
func With(l Logger, key string, value any) Logger {
	zl, ok := l.(zerologLogger)
	if !ok {
		return l
	}
	return zerologLogger{zl: zl.zl.With().Interface(key, value).Logger()}
}

func (l zerologLogger) write(ev *zerolog.Event, msg string, obj any) {
	if obj != nil {
		ev = ev.Interface("obj", obj)
	}
	ev.Msg(msg)
}

func (l zerologLogger) Info(msg string, obj any)  { l.write(l.zl.Info(), msg, obj) }
func (l zerologLogger) Warn(msg string, obj any)  { l.write(l.zl.Warn(), msg, obj) }
func (l zerologLogger) Debug(msg string, obj any) { l.write(l.zl.Debug(), msg, obj) }
func (l zerologLogger) Error(msg string, obj any) { l.write(l.zl.Error(), msg, obj) }

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a compatibility helper for format-style debug logging.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

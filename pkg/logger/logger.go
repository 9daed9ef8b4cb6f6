package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error, fatal, panic
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string // time format for log messages
	NoColor    bool
}

func New(cfg *Config) (*Logger, error) {
	// Configure output writer
	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}
	return NewWithWriter(output, cfg)
}

// NewWithWriter builds a logger writing to output; cfg.Output is ignored.
func NewWithWriter(output io.Writer, cfg *Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	// Configure time format (ensure it's not empty)
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	// If format is "console", use human-readable, otherwise use JSON
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
			NoColor:    cfg.NoColor,
		}
	}

	// Create logger instance
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(4).
		Logger()

	return &Logger{zl: logger}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger { return &Logger{zl: zerolog.Nop()} }

// With returns a child logger tagged with a component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) Info(msg string, fields ...Field)  { write(l.zl.Info(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { write(l.zl.Error(), msg, fields) }
func (l *Logger) Debug(msg string, fields ...Field) { write(l.zl.Debug(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { write(l.zl.Warn(), msg, fields) }

func write(event *zerolog.Event, msg string, fields []Field) {
	// nil when the level is disabled
	if event == nil {
		return
	}
	for _, f := range fields {
		f.add(event)
	}
	event.Msg(msg)
}

// Field is one structured key/value attached to a log line.
type Field struct {
	Key string
	add func(*zerolog.Event)
}

func String(key, value string) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Str(key, value) }}
}

func Int(key string, value int) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Int(key, value) }}
}

func Float(key string, value float64) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Float64(key, value) }}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Bool(key, value) }}
}

// Duration logs value in whole milliseconds.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Int64(key, value.Milliseconds()) }}
}

// Error logs err under "error"; a nil error is skipped.
func Error(err error) Field {
	return Field{Key: zerolog.ErrorFieldName, add: func(e *zerolog.Event) {
		if err != nil {
			e.Err(err)
		}
	}}
}

// Strings joins values with ", " so console output stays on one line.
func Strings(key string, values []string) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Str(key, strings.Join(values, ", ")) }}
}

func Any(key string, value any) Field {
	return Field{Key: key, add: func(e *zerolog.Event) { e.Interface(key, value) }}
}

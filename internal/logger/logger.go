package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Fields carries structured key/value pairs attached to a log entry.
type Fields = map[string]interface{}

// Logger wraps zerolog.Logger with map-based structured fields.
type Logger struct {
	zlog zerolog.Logger
}

type options struct {
	level   string
	service string
}

// Option customises a Logger built by New or NewWithWriter.
type Option func(*options)

// WithLevel overrides the environment's default level. Unknown or empty
// names keep the default.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithService tags every entry with a service name.
func WithService(name string) Option {
	return func(o *options) { o.service = name }
}

// New creates a Logger for env that writes to stdout: colored console output
// at debug level in development, JSON at info level everywhere else.
func New(env string, opts ...Option) *Logger {
	if env == "development" {
		return NewWithWriter(env, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}, opts...)
	}
	return NewWithWriter(env, os.Stdout, opts...)
}

// NewWithWriter creates a Logger that writes to w.
func NewWithWriter(env string, w io.Writer, opts ...Option) *Logger {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(o.level); err == nil && o.level != "" {
		level = parsed
	}

	zctx := zerolog.New(w).Level(level).With().Timestamp()
	if o.service != "" {
		zctx = zctx.Str("service", o.service)
	}
	return &Logger{zlog: zctx.Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func emit(event *zerolog.Event, msg string, fields Fields) {
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields Fields) {
	emit(l.zlog.Debug(), msg, fields)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields Fields) {
	emit(l.zlog.Info(), msg, fields)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields Fields) {
	emit(l.zlog.Warn(), msg, fields)
}

// Error logs msg with err and optional fields.
func (l *Logger) Error(msg string, err error, fields Fields) {
	emit(l.zlog.Error().Err(err), msg, fields)
}

// Fatal logs msg with err and exits the process.
func (l *Logger) Fatal(msg string, err error, fields Fields) {
	emit(l.zlog.Fatal().Err(err), msg, fields)
}

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields Fields) *Logger {
	zctx := l.zlog.With()
	for key, value := range fields {
		zctx = zctx.Interface(key, value)
	}
	return &Logger{zlog: zctx.Logger()}
}

// WithComponent tags every entry of the child logger with a component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", component).Logger()}
}

// WithRequestID tags every entry of the child logger with a request id.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("request_id", requestID).Logger()}
}

// WithFileNumber tags every entry of the child logger with an appraisal
// file number.
func (l *Logger) WithFileNumber(fileNumber string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("file_number", fileNumber).Logger()}
}

// GetZerolog returns the underlying zerolog.Logger.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

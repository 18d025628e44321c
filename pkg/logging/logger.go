package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured logger used across the module
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})
}

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	requestIDKey contextKey = "request_id"
)

var forceJSON atomic.Bool

// SetZeroLogJsonEnabled makes loggers created afterwards emit JSON regardless of env
func SetZeroLogJsonEnabled() {
	forceJSON.Store(true)
}

// WithRunID attaches a run ID that is added to every log line
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithRequestID attaches an HTTP request ID that is added to every log line
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ZeroLogger implements Logger on top of zerolog
type ZeroLogger struct {
	logger zerolog.Logger
}

// Option configures a ZeroLogger
type Option func(*zerolog.Logger)

// WithLevel sets the minimum level
func WithLevel(level zerolog.Level) Option {
	return func(l *zerolog.Logger) {
		*l = l.Level(level)
	}
}

// New creates a logger writing to stderr.
// JSON output is used when LOG_FORMAT=json or LOG_JSON is truthy, console output otherwise.
func New(options ...Option) *ZeroLogger {
	var w io.Writer = os.Stderr
	if !jsonEnabled() {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, options...)
}

// NewWithWriter creates a logger writing raw JSON lines to w
func NewWithWriter(w io.Writer, options ...Option) *ZeroLogger {
	l := zerolog.New(w).With().Timestamp().Logger().Level(levelFromEnv())
	for _, option := range options {
		option(&l)
	}
	return &ZeroLogger{logger: l}
}

func jsonEnabled() bool {
	if forceJSON.Load() {
		return true
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return true
	}
	switch strings.ToLower(os.Getenv("LOG_JSON")) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(ctx, l.logger.Debug(), msg, fields)
}

func (l *ZeroLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(ctx, l.logger.Info(), msg, fields)
}

func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(ctx, l.logger.Warn(), msg, fields)
}

func (l *ZeroLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.write(ctx, l.logger.Error(), msg, fields)
}

func (l *ZeroLogger) write(ctx context.Context, event *zerolog.Event, msg string, fields map[string]interface{}) {
	if event == nil {
		return
	}
	if ctx != nil {
		if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
			event = event.Str("run_id", runID)
		}
		if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
			event = event.Str("request_id", requestID)
		}
	}
	event.Fields(fields).Msg(msg)
}

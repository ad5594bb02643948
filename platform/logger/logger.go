// Package logger wraps log/slog with the request-scoped fields and event
// helpers the services share.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

// Context keys read by WithContext. Values must be strings.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TenantIDKey  contextKey = "tenant_id"
)

var contextFields = []contextKey{RequestIDKey, UserIDKey, TenantIDKey}

type Logger struct {
	*slog.Logger
}

func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter emits debug text in development and info JSON elsewhere.
func NewWithWriter(env string, w io.Writer) *Logger {
	if strings.EqualFold(env, "development") {
		return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	}
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{slog.New(slog.DiscardHandler)}
}

func (l *Logger) with(key, value string) *Logger {
	return &Logger{l.Logger.With(slog.String(key, value))}
}

// WithContext attaches the request, user and tenant ids found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	out := l
	for _, key := range contextFields {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			out = out.with(string(key), v)
		}
	}
	return out
}

func (l *Logger) WithRequestID(id string) *Logger { return l.with(string(RequestIDKey), id) }
func (l *Logger) WithUserID(id string) *Logger    { return l.with(string(UserIDKey), id) }
func (l *Logger) WithTenantID(id string) *Logger  { return l.with(string(TenantIDKey), id) }

func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.LogAttrs(context.Background(), slog.LevelInfo, "http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.LogAttrs(context.Background(), slog.LevelError, "http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Any("error", err),
		slog.String("client_ip", clientIP),
	)
}

// BatchProcessed warns when any lead in the batch failed.
func (l *Logger) BatchProcessed(action string, requested, succeeded int) {
	level := slog.LevelInfo
	if succeeded < requested {
		level = slog.LevelWarn
	}
	l.LogAttrs(context.Background(), level, "lead_batch_processed",
		slog.String("action", action),
		slog.Int("requested", requested),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", requested-succeeded),
	)
}

func (l *Logger) DatabaseError(operation string, err error) {
	l.LogAttrs(context.Background(), slog.LevelError, "database_error",
		slog.String("operation", operation),
		slog.Any("error", err),
	)
}

func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.LogAttrs(context.Background(), slog.LevelWarn, "rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

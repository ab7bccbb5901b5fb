// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the global structured logger used throughout the application.
var Logger *slog.Logger

type contextKey string

// Context keys read by the context-aware log handler.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok && uid != "" {
		r.AddAttrs(slog.String("user_id", uid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Stdout, os.Getenv("APP_ENV"))
}

// NewLogger builds a context-aware logger: JSON in production, text elsewhere.
func NewLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// SetLogger replaces the global logger, mostly for tests and cmd entrypoints.
func SetLogger(l *slog.Logger) {
	Logger = l
	slog.SetDefault(l)
}

// WithUserID returns ctx carrying the acting user id for log records.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFrom returns the acting user id stored by WithUserID.
func UserIDFrom(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

// StoreLogger provides structured logging for record store operations.
type StoreLogger struct {
	collection string
}

// NewStoreLogger creates a StoreLogger for one collection.
func NewStoreLogger(collection string) *StoreLogger {
	return &StoreLogger{collection: collection}
}

// LogWrite logs a persisted write.
func (l *StoreLogger) LogWrite(ctx context.Context, operation string, size int) {
	Logger.DebugContext(ctx, "store write",
		slog.String("collection", l.collection),
		slog.String("operation", operation),
		slog.Int("records", size),
	)
}

// LogFallback logs a malformed stored value that was replaced by the seed.
func (l *StoreLogger) LogFallback(ctx context.Context, err error) {
	Logger.WarnContext(ctx, "store value malformed, falling back to seed",
		slog.String("collection", l.collection),
		slog.String("error", err.Error()),
	)
}

// LogError logs a store failure.
func (l *StoreLogger) LogError(ctx context.Context, err error, operation string) {
	StoreOperations.WithLabelValues(l.collection, operation, "error").Inc()
	Logger.ErrorContext(ctx, "store error",
		slog.String("collection", l.collection),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

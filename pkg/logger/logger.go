// Package logger provides the service-wide structured logger built on log/slog.
//
// WithCtx returns the per-request logger injected by the HTTP logging
// middleware, so every line written while serving a request carries its
// request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID)
//	// → time=... level=INFO msg="order placed" request_id=0b9d... order_id=42
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/storefront/config"
)

var L *slog.Logger

// base is the stdout handler; sinks attached later fan out from it.
var base slog.Handler

func init() {
	opts := &slog.HandlerOptions{Level: level()}

	if config.IsProduction() {
		base = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		base = slog.NewTextHandler(os.Stdout, opts)
	}

	L = slog.New(base)
	slog.SetDefault(L)
}

func level() slog.Level {
	switch config.LogLevel() {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if config.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// AttachMongo adds an asynchronous MongoDB sink next to stdout. The returned
// func flushes and disconnects the sink; call it on shutdown.
func AttachMongo(uri, db, collection string) (func(), error) {
	h, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return func() {}, err
	}

	L = slog.New(NewMultiHandler(base, h))
	slog.SetDefault(L)

	return h.Close, nil
}

// ── Context-aware logger ─────────────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the request logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ── Short-hand helpers (base logger) ─────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ctxKey string

const (
	LoggerKey  ctxKey = "logger"
	TraceIDKey ctxKey = "traceID"
	UserIDKey  ctxKey = "user_id"
)

// WithLogger returns ctx carrying lg for FromCtx.
func WithLogger(ctx context.Context, lg *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, LoggerKey, lg)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// TraceID returns the request trace id or "".
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(TraceIDKey).(string)
	return s
}

// FromGin returns a request-scoped logger from gin.Context if present,
// otherwise returns the provided base logger.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get(string(LoggerKey)); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns a logger from context if set, otherwise attempts to enrich
// base with trace_id/user_id from context values.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	var lg *zap.SugaredLogger
	if l, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger); ok && l != nil {
		lg = l
	} else {
		lg = base
		if tid := TraceID(ctx); tid != "" {
			lg = lg.With("trace_id", tid)
		}
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok && uid != "" {
		lg = lg.With("user_id", uid)
	}
	return lg
}

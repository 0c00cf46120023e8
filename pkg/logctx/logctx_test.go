package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx_EnrichesTraceAndUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithUserID(WithTraceID(context.Background(), "trace-1"), "u-1")
	FromCtx(ctx, base).Infow("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "u-1", fields["user_id"])
}

func TestFromCtx_PrefersAttachedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	attached := zap.New(core).Sugar().With("scope", "request")

	ctx := WithLogger(context.Background(), attached)
	FromCtx(ctx, zap.NewNop().Sugar()).Infow("hello")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "request", logs.All()[0].ContextMap()["scope"])
}

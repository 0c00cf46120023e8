package gormlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestShortCaller(t *testing.T) {
	require.Equal(t, "internal/platform/db/postgres.go:38", shortCaller("/home/ci/paydesk/internal/platform/db/postgres.go:38"))
	require.Equal(t, "pkg/x/y.go:12", shortCaller(`C:\repo\project\pkg\x\y.go:12`))
	require.Equal(t, "a/b/c.go:1", shortCaller("/z/a/b/c.go:1"))
	require.Equal(t, "", shortCaller(""))
}

func TestTrace_IgnoresRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core).Sugar(), gormlogger.Warn)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	require.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "gorm_trace", logs.All()[0].Message)
}

func TestTrace_SilentLogsNothing(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core).Sugar(), gormlogger.Info).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	require.Equal(t, 0, logs.Len())
}

package gormlog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/swytch/paydesk/pkg/logctx"
)

// ZapLogger implements gorm.io/gorm/logger.Interface on top of the request
// scoped logger from logctx, so SQL lines carry trace_id and user_id.
type ZapLogger struct {
	base          *zap.SugaredLogger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func New(base *zap.SugaredLogger, level gormlogger.LogLevel) *ZapLogger {
	return &ZapLogger{base: base, level: level, slowThreshold: 300 * time.Millisecond}
}

func (z *ZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *z
	cp.level = level
	return &cp
}

func (z *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if z.level >= gormlogger.Info {
		logctx.FromCtx(ctx, z.base).Infow(msg, "args", data)
	}
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if z.level >= gormlogger.Warn {
		logctx.FromCtx(ctx, z.base).Warnw(msg, "args", data)
	}
}

func (z *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if z.level >= gormlogger.Error {
		logctx.FromCtx(ctx, z.base).Errorw(msg, "args", data)
	}
}

func (z *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	lg := logctx.FromCtx(ctx, z.base).With(
		"rows", rows,
		"elapsed_ms", elapsed.Milliseconds(),
		"caller", shortCaller(utils.FileWithLineNum()),
		"sql", sql,
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		lg.Errorw("gorm_trace", "err", err)
	case z.slowThreshold > 0 && elapsed > z.slowThreshold:
		lg.Warnw("gorm_slow")
	case z.level >= gormlogger.Info:
		lg.Debugw("gorm")
	}
}

// shortCaller trims absolute build paths to repo-relative ones:
// /home/ci/paydesk/internal/platform/db/postgres.go:38 -> internal/platform/db/postgres.go:38
func shortCaller(s string) string {
	if s == "" {
		return s
	}
	path, line := s, ""
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		path, line = s[:idx], s[idx:]
	}
	p := strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
	for _, marker := range []string{"/internal/", "/pkg/", "/cmd/"} {
		if i := strings.Index(p, marker); i >= 0 {
			return p[i+1:] + line
		}
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	if n := len(parts); n > 3 {
		parts = parts[n-3:]
	}
	return strings.Join(parts, "/") + line
}

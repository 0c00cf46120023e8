// Package lock gates one in-flight payment submission per user.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/swytch/paydesk/pkg/config"
)

var ErrHeld = errors.New("lock is held")

// Locker acquires a named lock without waiting. The returned release func is
// safe to call more than once.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Memory is a process-local Locker.
type Memory struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{held: map[string]time.Time{}, now: time.Now}
}

func (m *Memory) TryLock(_ context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if exp, ok := m.held[key]; ok && now.Before(exp) {
		return nil, ErrHeld
	}
	exp := now.Add(ttl)
	m.held[key] = exp
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// only drop our own entry; it may have expired and been retaken
			if cur, ok := m.held[key]; ok && cur.Equal(exp) {
				delete(m.held, key)
			}
		})
	}, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every replica.
type Redis struct {
	client redis.UniversalClient
	prefix string
	log    *zap.SugaredLogger
}

func NewRedis(client redis.UniversalClient, prefix string, log *zap.SugaredLogger) *Redis {
	return &Redis{client: client, prefix: prefix, log: log}
}

func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	full := r.prefix + ":" + key
	ok, err := r.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			// release must not depend on the request context, which may be done
			rctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, r.client, []string{full}, token).Err(); err != nil {
				r.log.Warnw("failed to release submission lock", "key", full, "err", err)
			}
		})
	}, nil
}

// New uses Redis when redis.url is set, else the process-local lock. A
// configured but unusable Redis falls back to the process-local lock in dev
// and refuses to start in prod.
func New(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) (Locker, error) {
	if cfg.Redis.URL == "" {
		return NewMemory(), nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fallback(cfg, log, fmt.Errorf("parse redis url: %w", err))
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fallback(cfg, log, fmt.Errorf("ping redis: %w", err))
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
	log.Infow("redis connected")
	return NewRedis(client, cfg.Redis.KeyPrefix, log), nil
}

func fallback(cfg *cfgpkg.Config, log *zap.SugaredLogger, err error) (Locker, error) {
	if cfg.Env == cfgpkg.EnvProd {
		return nil, fmt.Errorf("submission lock unavailable in %s: %w", cfg.Env, err)
	}
	log.Warnw("redis unavailable; using in-process submission lock", "err", err)
	return NewMemory(), nil
}

var Module = fx.Options(
	fx.Provide(New),
)

// Package objectstore keeps payment screenshots in S3-compatible storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/swytch/paydesk/pkg/config"
)

var ErrNotFound = errors.New("object not found")

// Store uploads objects and resolves URLs that reviewers can open.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// New picks S3 when a bucket is configured. Dev runs without a bucket fall
// back to an in-process store; prod refuses to start.
func New(ctx context.Context, cfg *cfgpkg.Config, log *zap.SugaredLogger) (Store, error) {
	if cfg.Storage.Bucket != "" {
		return NewS3(ctx, cfg.Storage)
	}
	if cfg.Env == cfgpkg.EnvProd {
		return nil, fmt.Errorf("storage.bucket is required in %s", cfg.Env)
	}
	log.Warnw("storage.bucket not set; screenshots are kept in memory")
	return NewMemory("memory://screenshots/"), nil
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

type Object struct {
	ContentType string
	Body        []byte
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: baseURL, objects: map[string]Object{}}
}

func (m *Memory) Upload(ctx context.Context, key, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(body))
	copy(cp, body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Body: cp}
	return nil
}

func (m *Memory) DownloadURL(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return m.baseURL + key, nil
}

// Get returns a stored object.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

func provide(cfg *cfgpkg.Config, log *zap.SugaredLogger) (Store, error) {
	return New(context.Background(), cfg, log)
}

var Module = fx.Options(
	fx.Provide(provide),
)

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"smm-planner/internal/domain"
)

// MemoryCache хранит данные в памяти процесса для запуска без Redis.
// bigcache держит одно окно жизни на весь кэш, поэтому ttl из Set игнорируется
// и действует lifeWindow, заданный при создании.
type MemoryCache struct {
	store *bigcache.BigCache
}

var _ domain.Cache = (*MemoryCache)(nil)

// NewMemory создаёт кэш с общим временем жизни записей.
func NewMemory(ctx context.Context, lifeWindow time.Duration) (*MemoryCache, error) {
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Shards = 64
	cfg.CleanWindow = lifeWindow / 4
	cfg.HardMaxCacheSize = 64
	cfg.Verbose = false
	store, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create bigcache: %w", err)
	}
	return &MemoryCache{store: store}, nil
}

// Set задаёт значение.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return c.store.Set(key, value)
}

// Get возвращает значение или domain.ErrCacheMiss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, domain.ErrCacheMiss
	}
	return data, err
}

// Close освобождает ресурсы кэша.
func (c *MemoryCache) Close() error {
	return c.store.Close()
}

package server

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type localEntry struct {
	Expires time.Time
	Data    []byte
}

// Cache is redis with a short lived in process copy in front of it.
type Cache struct {
	Addr     string
	Password string
	DB       int
	client   *redis.Client
	mu       sync.RWMutex
	memCache map[string]localEntry
	LocalTTL time.Duration
}

func NewCache(addr, password string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		Addr:     addr,
		Password: password,
		DB:       db,
		client:   rdb,
		memCache: make(map[string]localEntry),
		LocalTTL: time.Minute,
	}
}

func (c *Cache) getLocal(key string) ([]byte, bool) {
	c.mu.RLock()
	local, found := c.memCache[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	if local.Expires.Before(time.Now()) {
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
		return nil, false
	}
	return local.Data, true
}

func (c *Cache) setLocal(key string, data []byte, expiration time.Duration) {
	if expiration <= 0 || expiration > c.LocalTTL {
		expiration = c.LocalTTL
	}
	c.mu.Lock()
	c.memCache[key] = localEntry{Expires: time.Now().Add(expiration), Data: data}
	c.mu.Unlock()
}

func (c *Cache) Get(ctx context.Context, key string, out any) error {
	if data, ok := c.getLocal(key); ok {
		return sonic.Unmarshal(data, out)
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	if err = sonic.Unmarshal(data, out); err != nil {
		return err
	}
	c.setLocal(key, data, c.LocalTTL)
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	c.setLocal(key, data, expiration)
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Flush drops the local copies. Redis entries expire on their own and carry
// the catalog version in their key.
func (c *Cache) Flush() {
	c.mu.Lock()
	clear(c.memCache)
	c.mu.Unlock()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

package server

import (
	"context"
	"time"
)

type CacheHelper[T any] struct {
	Cache *Cache
}

func NewCacheHelper[T any](cache *Cache) *CacheHelper[T] {
	return &CacheHelper[T]{Cache: cache}
}

// Handle fills out from the cache, or from fn when the key is missing. A nil
// cache always calls fn. The returned error is from storing, out is valid
// either way.
func (c *CacheHelper[T]) Handle(ctx context.Context, key string, out *T, fn func() T, expiration time.Duration) error {
	if c == nil || c.Cache == nil {
		*out = fn()
		return nil
	}
	err := c.Cache.Get(ctx, key, out)
	if err != nil {
		*out = fn()
		err = c.Cache.Set(ctx, key, out, expiration)
	}
	return err
}

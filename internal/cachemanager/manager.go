// Package cachemanager provides in-process caches for values that are
// expensive to recompute between runs of a long-lived command.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values of type V under string keys with a per-item TTL.
type CacheManager[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	Flush(ctx context.Context)
	ItemCount() int
}

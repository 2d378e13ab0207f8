// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ensemble/pkg/log"
)

// QueryFunc defines a function that queries data from database
type QueryFunc[T any] func(ctx context.Context) (T, error)

// CachedQuery provides a generic cache-aside pattern implementation
// It queries the cache first, and falls back to the loader on miss
type CachedQuery[T any] struct {
	cache     ICache
	ttl       time.Duration
	logPrefix string
}

// CachedQueryOption configures CachedQuery behavior
type CachedQueryOption[T any] func(*CachedQuery[T])

// WithTTL sets the cache expiration time
func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

// WithLogPrefix sets the log prefix for debugging
func WithLogPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.logPrefix = prefix
	}
}

// NewCachedQuery creates a new CachedQuery instance; a nil cache disables caching
func NewCachedQuery[T any](cache ICache, opts ...CachedQueryOption[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		ttl:       time.Hour, // default TTL
		logPrefix: "[CachedQuery]",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Get returns the cached value for key, or runs query and caches its result
func (cq *CachedQuery[T]) Get(ctx context.Context, key string, query QueryFunc[T]) (T, error) {
	var zero T

	if cq.cache != nil {
		cacheData, err := cq.cache.Get(ctx, key)
		if err == nil && cacheData != "" {
			var result T
			if err := sonic.UnmarshalString(cacheData, &result); err == nil {
				log.Debugw(cq.logPrefix+" cache hit", "key", key)
				return result, nil
			}
			log.Warnw(cq.logPrefix+" failed to unmarshal cached data", "key", key, "error", err)
		} else if err != nil && !errors.Is(err, ErrCacheMiss) {
			log.Warnw(cq.logPrefix+" cache get error", "key", key, "error", err)
		}
	}

	result, err := query(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to query from database: %w", err)
	}

	if cq.cache != nil {
		cacheData, err := sonic.MarshalString(result)
		if err != nil {
			log.Warnw(cq.logPrefix+" failed to marshal result for caching", "key", key, "error", err)
			return result, nil
		}
		if err := cq.cache.Set(ctx, key, cacheData, cq.ttl); err != nil {
			log.Warnw(cq.logPrefix+" failed to cache result", "key", key, "error", err)
		}
	}
	return result, nil
}

// Invalidate removes the cached data
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, keys ...string) error {
	if cq.cache == nil {
		return nil
	}
	if err := cq.cache.Del(ctx, keys...); err != nil {
		log.Warnw(cq.logPrefix+" failed to invalidate cache", "keys", keys, "error", err)
		return err
	}
	return nil
}

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
	"time"

	"github.com/go-arcade/ensemble/pkg/log"
)

// HybridCacheConfig 控制两级缓存
type HybridCacheConfig struct {
	// LocalTTLRatio 本地过期时间相对远程的比例，本地先于远程失效
	LocalTTLRatio float64
}

// HybridCache 本地 FastCache + 远程 Redis 两级缓存
type HybridCache struct {
	local  ICache
	remote ICache
	conf   HybridCacheConfig
}

func NewHybridCache(local, remote ICache, conf HybridCacheConfig) *HybridCache {
	if conf.LocalTTLRatio <= 0 || conf.LocalTTLRatio > 1 {
		conf.LocalTTLRatio = 0.8
	}
	return &HybridCache{local: local, remote: remote, conf: conf}
}

func (h *HybridCache) localTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return time.Duration(float64(ttl) * h.conf.LocalTTLRatio)
}

func (h *HybridCache) Get(ctx context.Context, key string) (string, error) {
	if v, err := h.local.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := h.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Warnw("remote cache get failed", "key", key, "error", err)
		}
		return "", err
	}
	// 远程命中回填本地，不知道远程剩余 TTL，使用一个较短的固定值
	_ = h.local.Set(ctx, key, v, h.localTTL(time.Minute))
	return v, nil
}

func (h *HybridCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	_ = h.local.Set(ctx, key, value, h.localTTL(expiration))
	return h.remote.Set(ctx, key, value, expiration)
}

func (h *HybridCache) Del(ctx context.Context, keys ...string) error {
	_ = h.local.Del(ctx, keys...)
	return h.remote.Del(ctx, keys...)
}

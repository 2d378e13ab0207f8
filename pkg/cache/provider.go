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
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供缓存依赖（Redis + 本地 FastCache）
var ProviderSet = wire.NewSet(
	ProvideRedis,
	ProvideFastCache,
	ProvideICache,
)

// Conf 本地缓存配置
type Conf struct {
	Local         FastCacheConfig `mapstructure:"local"`
	LocalTTLRatio float64         `mapstructure:"localTTLRatio"`
}

// ProvideRedis 提供 Redis 实例，未配置时返回 nil
func ProvideRedis(conf Redis) (*redis.Client, func(), error) {
	if !conf.Enabled() {
		return nil, func() {}, nil
	}
	client, err := NewRedis(conf)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideFastCache 提供 FastCache 实例
func ProvideFastCache(conf Conf) *FastCache {
	return NewFastCache(conf.Local)
}

// ProvideICache 有 Redis 时使用两级缓存，否则只用本地缓存
func ProvideICache(conf Conf, local *FastCache, client *redis.Client) ICache {
	if client == nil {
		return local
	}
	return NewHybridCache(local, NewRedisCache(client), HybridCacheConfig{LocalTTLRatio: conf.LocalTTLRatio})
}

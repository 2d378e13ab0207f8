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
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates that the key was not found in cache
var ErrCacheMiss = redis.Nil

// ICache 定义缓存接口（抽象）
type ICache interface {
	// Get 获取缓存值，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	// Set 设置缓存值，expiration 为 0 表示不过期
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Del 删除缓存
	Del(ctx context.Context, keys ...string) error
}

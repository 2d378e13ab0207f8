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
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

const expireHeaderLen = 8

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	MaxBytes int `mapstructure:"maxBytes"` // Maximum bytes for fastcache, default 16MB
}

// FastCache is a local cache implementation using VictoriaMetrics fastcache.
// Expiration is stored as an 8 byte unix-nano header in front of the value,
// so expired entries are dropped lazily on read.
type FastCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

// NewFastCache creates a new FastCache instance
func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024 // default 16MB
	}
	return &FastCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

func (fc *FastCache) Get(_ context.Context, key string) (string, error) {
	raw, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok || len(raw) < expireHeaderLen {
		return "", ErrCacheMiss
	}
	exp := int64(binary.BigEndian.Uint64(raw[:expireHeaderLen]))
	if exp != 0 && fc.now().UnixNano() >= exp {
		fc.cache.Del([]byte(key))
		return "", ErrCacheMiss
	}
	return string(raw[expireHeaderLen:]), nil
}

func (fc *FastCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	var exp int64
	if expiration > 0 {
		exp = fc.now().Add(expiration).UnixNano()
	}
	buf := make([]byte, expireHeaderLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(exp))
	copy(buf[expireHeaderLen:], value)
	fc.cache.Set([]byte(key), buf)
	return nil
}

func (fc *FastCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		fc.cache.Del([]byte(key))
	}
	return nil
}

// Reset 清空本地缓存
func (fc *FastCache) Reset() {
	fc.cache.Reset()
}

// Stats returns the entry count and bytes used.
func (fc *FastCache) Stats() (entries uint64, bytes uint64) {
	var s fastcache.Stats
	fc.cache.UpdateStats(&s)
	return s.EntriesCount, s.BytesSize
}

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFastCache(now *time.Time) *FastCache {
	fc := NewFastCache(FastCacheConfig{})
	if now != nil {
		fc.now = func() time.Time { return *now }
	}
	return fc
}

func TestFastCache_GetSetDel(t *testing.T) {
	ctx := context.Background()
	fc := newTestFastCache(nil)

	_, err := fc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, fc.Set(ctx, "k", "v", 0))
	v, err := fc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, fc.Set(ctx, "empty", "", 0))
	v, err = fc.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, fc.Del(ctx, "k", "missing"))
	_, err = fc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	entries, _ := fc.Stats()
	assert.EqualValues(t, 1, entries)
	fc.Reset()
	entries, _ = fc.Stats()
	assert.Zero(t, entries)
}

func TestFastCache_Expiration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := newTestFastCache(&now)

	require.NoError(t, fc.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	v, err := fc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	now = now.Add(time.Second)
	_, err = fc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestHybridCache(t *testing.T) {
	ctx := context.Background()
	local := newTestFastCache(nil)
	remote := newTestFastCache(nil)
	h := NewHybridCache(local, remote, HybridCacheConfig{})

	require.NoError(t, h.Set(ctx, "k", "v", time.Hour))
	lv, err := local.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", lv)

	// 本地未命中时从远程回填
	require.NoError(t, local.Del(ctx, "k"))
	v, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	lv, err = local.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", lv)

	require.NoError(t, h.Del(ctx, "k"))
	_, err = h.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCachedQuery(t *testing.T) {
	ctx := context.Background()
	cq := NewCachedQuery(ICache(newTestFastCache(nil)), WithTTL[user](time.Minute), WithLogPrefix[user]("[test]"))

	calls := 0
	load := func(context.Context) (user, error) {
		calls++
		return user{ID: "u1", Name: "Alice"}, nil
	}

	got, err := cq.Get(ctx, "user:u1", load)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	got, err = cq.Get(ctx, "user:u1", load)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 1, calls)

	require.NoError(t, cq.Invalidate(ctx, "user:u1"))
	_, err = cq.Get(ctx, "user:u1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedQuery_Error(t *testing.T) {
	boom := errors.New("boom")
	cq := NewCachedQuery[user](nil)

	_, err := cq.Get(context.Background(), "k", func(context.Context) (user, error) {
		return user{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, cq.Invalidate(context.Background(), "k"))
}

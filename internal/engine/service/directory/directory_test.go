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

package directory

import (
	"context"
	"testing"
	"time"

	modeldir "github.com/go-arcade/ensemble/internal/engine/model/directory"
	repodir "github.com/go-arcade/ensemble/internal/engine/repo/directory"
	"github.com/go-arcade/ensemble/pkg/cache"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) database.DB {
	t.Helper()
	db, err := database.NewMemory(id.GetUUIDWithoutDashes())
	require.NoError(t, err)
	require.NoError(t, db.DB().AutoMigrate(&modeldir.RolePriority{}, &modeldir.ClanMember{}, &modeldir.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestRankMap(t *testing.T) {
	m := RankMap{"vocal": 1, "drums": 3}
	assert.Equal(t, 1, m.Rank("vocal"))
	assert.Equal(t, 3, m.Rank("drums"))
	assert.Equal(t, UnknownRank, m.Rank("theremin"))
}

func TestIsElevated(t *testing.T) {
	tests := []struct {
		rank int
		want bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsElevated(tt.rank), "rank %d", tt.rank)
	}
}

func TestRolePriorityService(t *testing.T) {
	db := newTestDB(t)
	svc := NewRolePriorityService(repodir.NewRolePriorityRepo(db))
	ctx := context.Background()

	assert.Equal(t, UnknownRank, svc.Rank("vocal"))

	require.NoError(t, svc.Seed(ctx, DefaultRolePriorities))
	assert.Equal(t, 1, svc.Rank("vocal"))
	assert.Equal(t, 5, svc.Rank("drums"))
	assert.Equal(t, UnknownRank, svc.Rank("kazoo"))

	// 重复写入覆盖 rank
	require.NoError(t, svc.Seed(ctx, RankMap{"drums": 0}))
	assert.Equal(t, 0, svc.Rank("drums"))
	assert.Len(t, svc.Snapshot(), 5)
}

func TestUserDirectoryService(t *testing.T) {
	db := newTestDB(t)
	local := cache.NewFastCache(cache.FastCacheConfig{MaxBytes: 1 << 20})
	svc := NewUserDirectoryService(repodir.NewUserRepo(db), local, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a", "Alice"))
	require.NoError(t, svc.Register(ctx, "b", ""))

	names, err := svc.DisplayNames(ctx, []string{"a", "b", "ghost", "a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "Alice", "b": "b"}, names)

	exists, err := svc.Exists(ctx, []string{"a", "ghost"})
	require.NoError(t, err)
	assert.True(t, exists["a"])
	assert.False(t, exists["ghost"])

	// 未命中的用户注册后立即可见
	require.NoError(t, svc.Register(ctx, "ghost", "Casper"))
	exists, err = svc.Exists(ctx, []string{"ghost"})
	require.NoError(t, err)
	assert.True(t, exists["ghost"])

	require.NoError(t, svc.Register(ctx, "a", "Alicia"))
	names, err = svc.DisplayNames(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", names["a"])
}

func TestClanRoleService(t *testing.T) {
	db := newTestDB(t)
	local := cache.NewFastCache(cache.FastCacheConfig{MaxBytes: 1 << 20})
	svc := NewClanRoleService(repodir.NewClanMemberRepo(db), local, time.Minute)
	ctx := context.Background()

	_, ok, err := svc.Rank(ctx, "clan-1", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.SetRank(ctx, "clan-1", "a", 2))
	rank, ok, err := svc.Rank(ctx, "clan-1", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, rank)

	require.NoError(t, svc.SetRank(ctx, "clan-1", "a", 4))
	rank, _, err = svc.Rank(ctx, "clan-1", "a")
	require.NoError(t, err)
	assert.Equal(t, 4, rank)

	_, ok, err = svc.Rank(ctx, "", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

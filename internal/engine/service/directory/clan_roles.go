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
	"errors"
	"fmt"
	"time"

	modeldir "github.com/go-arcade/ensemble/internal/engine/model/directory"
	repodir "github.com/go-arcade/ensemble/internal/engine/repo/directory"
	"github.com/go-arcade/ensemble/pkg/cache"
	"github.com/go-arcade/ensemble/pkg/log"
	"gorm.io/gorm"
)

const clanKeyPrefix = "ensemble:clan:"

type clanEntry struct {
	Rank   int  `json:"rank"`
	Member bool `json:"member"`
}

type ClanRoleService struct {
	repo  repodir.IClanMemberRepository
	ranks *cache.CachedQuery[clanEntry]
}

func NewClanRoleService(repo repodir.IClanMemberRepository, c cache.ICache, ttl time.Duration) *ClanRoleService {
	return &ClanRoleService{
		repo: repo,
		ranks: cache.NewCachedQuery[clanEntry](c,
			cache.WithTTL[clanEntry](ttl),
			cache.WithLogPrefix[clanEntry]("[ClanRoles]"),
		),
	}
}

func (s *ClanRoleService) Rank(ctx context.Context, clanId, userId string) (int, bool, error) {
	if clanId == "" || userId == "" {
		return 0, false, nil
	}
	entry, err := s.ranks.Get(ctx, clanKey(clanId, userId), func(ctx context.Context) (clanEntry, error) {
		m, err := s.repo.Get(ctx, clanId, userId)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return clanEntry{}, nil
		}
		if err != nil {
			return clanEntry{}, err
		}
		return clanEntry{Rank: m.Rank, Member: true}, nil
	})
	if err != nil {
		log.Errorw("lookup clan role failed", "clanId", clanId, "userId", userId, "error", err)
		return 0, false, fmt.Errorf("lookup clan role failed: %w", err)
	}
	return entry.Rank, entry.Member, nil
}

// SetRank 写入公会角色并清理缓存
func (s *ClanRoleService) SetRank(ctx context.Context, clanId, userId string, rank int) error {
	err := s.repo.Upsert(ctx, &modeldir.ClanMember{ClanId: clanId, UserId: userId, Rank: rank})
	if err != nil {
		log.Errorw("set clan rank failed", "clanId", clanId, "userId", userId, "error", err)
		return fmt.Errorf("set clan rank failed: %w", err)
	}
	_ = s.ranks.Invalidate(ctx, clanKey(clanId, userId))
	return nil
}

func clanKey(clanId, userId string) string {
	return clanKeyPrefix + clanId + ":" + userId
}

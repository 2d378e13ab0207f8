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
)

const userKeyPrefix = "ensemble:user:"

var errUserNotFound = errors.New("user not found")

type UserDirectoryService struct {
	repo  repodir.IUserRepository
	names *cache.CachedQuery[string]
}

func NewUserDirectoryService(repo repodir.IUserRepository, c cache.ICache, ttl time.Duration) *UserDirectoryService {
	return &UserDirectoryService{
		repo: repo,
		names: cache.NewCachedQuery[string](c,
			cache.WithTTL[string](ttl),
			cache.WithLogPrefix[string]("[UserDirectory]"),
		),
	}
}

// DisplayNames 返回存在的用户的显示名，不存在的 id 不出现在结果中
func (s *UserDirectoryService) DisplayNames(ctx context.Context, userIds []string) (map[string]string, error) {
	out := make(map[string]string, len(userIds))
	for _, uid := range userIds {
		if _, ok := out[uid]; ok {
			continue
		}
		name, err := s.names.Get(ctx, userKeyPrefix+uid, func(ctx context.Context) (string, error) {
			return s.load(ctx, uid)
		})
		if errors.Is(err, errUserNotFound) {
			continue
		}
		if err != nil {
			log.Errorw("resolve display name failed", "userId", uid, "error", err)
			return nil, fmt.Errorf("resolve display name failed: %w", err)
		}
		out[uid] = name
	}
	return out, nil
}

// Exists 返回每个 id 是否存在
func (s *UserDirectoryService) Exists(ctx context.Context, userIds []string) (map[string]bool, error) {
	names, err := s.DisplayNames(ctx, userIds)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(userIds))
	for _, uid := range userIds {
		_, out[uid] = names[uid]
	}
	return out, nil
}

// Register 写入用户并清理缓存
func (s *UserDirectoryService) Register(ctx context.Context, userId, displayName string) error {
	if displayName == "" {
		displayName = userId
	}
	if err := s.repo.Upsert(ctx, []modeldir.User{{UserId: userId, DisplayName: displayName}}); err != nil {
		log.Errorw("register user failed", "userId", userId, "error", err)
		return fmt.Errorf("register user failed: %w", err)
	}
	_ = s.names.Invalidate(ctx, userKeyPrefix+userId)
	return nil
}

func (s *UserDirectoryService) load(ctx context.Context, userId string) (string, error) {
	users, err := s.repo.ListByIds(ctx, []string{userId})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", errUserNotFound
	}
	return users[0].DisplayName, nil
}

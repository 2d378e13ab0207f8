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
	"fmt"
	"sync"

	modeldir "github.com/go-arcade/ensemble/internal/engine/model/directory"
	repodir "github.com/go-arcade/ensemble/internal/engine/repo/directory"
	"github.com/go-arcade/ensemble/pkg/log"
)

// DefaultRolePriorities 初始化数据库时写入的默认优先级
var DefaultRolePriorities = RankMap{
	"vocal":    1,
	"guitar":   2,
	"bass":     3,
	"keyboard": 4,
	"drums":    5,
}

// RolePriorityService keeps an in-memory snapshot of t_role_priority.
// Rank never touches the database; Refresh swaps the snapshot.
type RolePriorityService struct {
	repo repodir.IRolePriorityRepository

	mu    sync.RWMutex
	ranks RankMap
}

func NewRolePriorityService(repo repodir.IRolePriorityRepository) *RolePriorityService {
	return &RolePriorityService{
		repo:  repo,
		ranks: RankMap{},
	}
}

func (s *RolePriorityService) Rank(roleCode string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranks.Rank(roleCode)
}

// Refresh 从数据库重新加载优先级表
func (s *RolePriorityService) Refresh(ctx context.Context) error {
	items, err := s.repo.List(ctx)
	if err != nil {
		log.Errorw("load role priorities failed", "error", err)
		return fmt.Errorf("load role priorities failed: %w", err)
	}
	ranks := make(RankMap, len(items))
	for _, it := range items {
		ranks[it.RoleCode] = it.Rank
	}

	s.mu.Lock()
	s.ranks = ranks
	s.mu.Unlock()

	log.Debugw("role priorities refreshed", "count", len(ranks))
	return nil
}

// Snapshot returns a copy of the current table.
func (s *RolePriorityService) Snapshot() RankMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(RankMap, len(s.ranks))
	for k, v := range s.ranks {
		out[k] = v
	}
	return out
}

// Seed 写入优先级并刷新快照
func (s *RolePriorityService) Seed(ctx context.Context, ranks RankMap) error {
	items := make([]modeldir.RolePriority, 0, len(ranks))
	for code, rank := range ranks {
		items = append(items, modeldir.RolePriority{RoleCode: code, Rank: rank})
	}
	if err := s.repo.Upsert(ctx, items); err != nil {
		log.Errorw("seed role priorities failed", "error", err)
		return fmt.Errorf("seed role priorities failed: %w", err)
	}
	return s.Refresh(ctx)
}

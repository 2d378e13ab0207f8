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

package jam

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/go-arcade/ensemble/pkg/log"
	"gorm.io/gorm"
)

// ResolveLeader picks the occupant of the occupied slot with the lowest
// (role rank, occupied_at), then lowest position and slot id. ok is false
// when no slot is occupied.
func ResolveLeader(slots []model.Slot, ranks directory.RolePriorityTable) (string, bool) {
	occupied := make([]model.Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := s.Occupant(); ok {
			occupied = append(occupied, s)
		}
	}
	if len(occupied) == 0 {
		return "", false
	}

	slices.SortFunc(occupied, func(a, b model.Slot) int {
		if ra, rb := ranks.Rank(a.RoleCode), ranks.Rank(b.RoleCode); ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
		if c := occupiedAt(a).Compare(occupiedAt(b)); c != 0 {
			return c
		}
		if a.Position != b.Position {
			if a.Position < b.Position {
				return -1
			}
			return 1
		}
		return strings.Compare(a.SlotId, b.SlotId)
	})

	leader, _ := occupied[0].Occupant()
	return leader, true
}

func occupiedAt(s model.Slot) time.Time {
	if s.OccupiedAt == nil {
		return time.Time{}
	}
	return *s.OccupiedAt
}

// leadership 在乐器位变更后于同一事务内重算 leader
type leadership struct {
	jams    repojam.IJamRepository
	slots   repojam.ISlotRepository
	members repojam.IMembershipRepository
	ranks   directory.RolePriorityTable
	now     func() time.Time
}

// recompute 返回 leader 变更事件，未变更或无法确定 leader 时返回 nil
func (l *leadership) recompute(ctx context.Context, j *model.Jam) (event.Event, error) {
	slots, err := l.slots.ListByJam(ctx, j.JamId)
	if err != nil {
		return nil, infra("list slots", err)
	}

	leader, ok := ResolveLeader(slots, l.ranks)
	if !ok {
		// 没有占用者时保留原 leader
		log.Debugw("no occupied slot, leader kept", "jamId", j.JamId, "leader", j.LeaderUserId)
		return nil, nil
	}
	if leader == j.LeaderUserId {
		// leader 未变，但其成员关系可能是刚重新创建的 NORMAL
		return nil, l.ensureFlag(ctx, j.JamId, leader)
	}

	prev := j.LeaderUserId
	if err := l.jams.UpdateLeader(ctx, j.JamId, leader, model.System); err != nil {
		return nil, infra("update leader", err)
	}
	if err := l.members.SetRoleFlag(ctx, j.JamId, leader, model.RoleLeader, model.System); err != nil {
		return nil, infra("promote leader", err)
	}
	if prev != "" {
		if err := l.members.SetRoleFlag(ctx, j.JamId, prev, model.RoleNormal, model.System); err != nil {
			return nil, infra("demote leader", err)
		}
	}
	j.LeaderUserId = leader

	log.Infow("jam leader changed", "jamId", j.JamId, "from", prev, "to", leader)
	return LeaderChanged{JamId: j.JamId, From: prev, To: leader, At: l.now()}, nil
}

func (l *leadership) ensureFlag(ctx context.Context, jamId, leader string) error {
	m, err := l.members.Get(ctx, jamId, leader)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return infra("get leader membership", err)
	}
	if m.RoleFlag == model.RoleLeader {
		return nil
	}
	return infra("promote leader", l.members.SetRoleFlag(ctx, jamId, leader, model.RoleLeader, model.System))
}

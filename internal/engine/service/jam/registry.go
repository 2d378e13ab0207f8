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
	"fmt"
	"time"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/pkg/id"
)

// registry 管理 jam 的乐器位
type registry struct {
	slots repojam.ISlotRepository
	now   func() time.Time
}

// defineSlots 按声明顺序为每个角色创建一个空闲乐器位，允许重复角色
func (r *registry) defineSlots(ctx context.Context, jamId string, roleCodes []string, actor model.Actor) ([]model.Slot, error) {
	slots := make([]model.Slot, 0, len(roleCodes))
	for i, code := range roleCodes {
		slots = append(slots, model.Slot{
			SlotId:    id.GetUUID(),
			JamId:     jamId,
			RoleCode:  code,
			Position:  i,
			UpdatedBy: actor,
		})
	}
	if err := r.slots.CreateBatch(ctx, slots); err != nil {
		return nil, infra("define slots", err)
	}
	return slots, nil
}

// slotOf 获取属于 jamId 的乐器位，其他 jam 的乐器位视为不存在
func (r *registry) slotOf(ctx context.Context, jamId, slotId string) (*model.Slot, error) {
	s, err := r.slots.Get(ctx, slotId)
	if err != nil {
		return nil, notFoundOr("get slot", "slot "+slotId, err)
	}
	if s.JamId != jamId {
		return nil, fmt.Errorf("slot %s: %w", slotId, ErrNotFound)
	}
	return s, nil
}

func (r *registry) occupy(ctx context.Context, jamId, slotId, userId string, actor model.Actor) (*model.Slot, error) {
	s, err := r.slotOf(ctx, jamId, slotId)
	if err != nil {
		return nil, err
	}
	if occupant, ok := s.Occupant(); ok {
		return nil, fmt.Errorf("slot %s held by %s: %w", slotId, occupant, ErrSlotAlreadyOccupied)
	}

	at := r.now()
	ok, err := r.slots.Occupy(ctx, slotId, userId, at, actor)
	if err != nil {
		return nil, infra("occupy slot", err)
	}
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", slotId, ErrSlotAlreadyOccupied)
	}
	s.OccupantUserId = &userId
	s.OccupiedAt = &at
	s.UpdatedBy = actor
	return s, nil
}

// vacate 只有 userId 是当前占用者时才清空，返回是否清空
func (r *registry) vacate(ctx context.Context, s *model.Slot, userId string, actor model.Actor) (bool, error) {
	ok, err := r.slots.Vacate(ctx, s.SlotId, userId, actor)
	if err != nil {
		return false, infra("vacate slot", err)
	}
	return ok, nil
}

func (r *registry) isFull(ctx context.Context, jamId string) (bool, error) {
	n, err := r.slots.CountVacant(ctx, jamId)
	if err != nil {
		return false, infra("count vacant slots", err)
	}
	return n == 0, nil
}

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
	"time"

	"github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/go-arcade/ensemble/pkg/database"
)

type ISlotRepository interface {
	CreateBatch(ctx context.Context, slots []jam.Slot) error
	Get(ctx context.Context, slotId string) (*jam.Slot, error)
	ListByJam(ctx context.Context, jamId string) ([]jam.Slot, error)
	Occupy(ctx context.Context, slotId, userId string, at time.Time, actor jam.Actor) (bool, error)
	Vacate(ctx context.Context, slotId, userId string, actor jam.Actor) (bool, error)
	CountVacant(ctx context.Context, jamId string) (int64, error)
	CountHeldBy(ctx context.Context, jamId, userId string) (int64, error)
}

type SlotRepo struct {
	db database.DB
}

func NewSlotRepo(db database.DB) ISlotRepository {
	return &SlotRepo{db: db}
}

// CreateBatch 批量创建乐器位
func (r *SlotRepo) CreateBatch(ctx context.Context, slots []jam.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.Conn(ctx).Create(&slots).Error
}

// Get 获取乐器位，不存在时返回 gorm.ErrRecordNotFound
func (r *SlotRepo) Get(ctx context.Context, slotId string) (*jam.Slot, error) {
	var s jam.Slot
	err := r.db.Conn(ctx).Where("slot_id = ?", slotId).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByJam 按声明顺序列出 jam 的所有乐器位
func (r *SlotRepo) ListByJam(ctx context.Context, jamId string) ([]jam.Slot, error) {
	var slots []jam.Slot
	err := r.db.Conn(ctx).Where("jam_id = ?", jamId).Order("position ASC, slot_id ASC").Find(&slots).Error
	return slots, err
}

// Occupy 仅当乐器位空闲时写入占用者，返回是否占用成功
func (r *SlotRepo) Occupy(ctx context.Context, slotId, userId string, at time.Time, actor jam.Actor) (bool, error) {
	res := r.db.Conn(ctx).Model(&jam.Slot{}).
		Where("slot_id = ? AND occupant_user_id IS NULL", slotId).
		Updates(map[string]any{
			"occupant_user_id": userId,
			"occupied_at":      at,
			"updated_by":       actor,
		})
	return res.RowsAffected > 0, res.Error
}

// Vacate 仅当 userId 是当前占用者时清空，返回是否清空
func (r *SlotRepo) Vacate(ctx context.Context, slotId, userId string, actor jam.Actor) (bool, error) {
	res := r.db.Conn(ctx).Model(&jam.Slot{}).
		Where("slot_id = ? AND occupant_user_id = ?", slotId, userId).
		Updates(map[string]any{
			"occupant_user_id": nil,
			"occupied_at":      nil,
			"updated_by":       actor,
		})
	return res.RowsAffected > 0, res.Error
}

// CountVacant 统计空闲乐器位
func (r *SlotRepo) CountVacant(ctx context.Context, jamId string) (int64, error) {
	var n int64
	err := r.db.Conn(ctx).Model(&jam.Slot{}).
		Where("jam_id = ? AND occupant_user_id IS NULL", jamId).
		Count(&n).Error
	return n, err
}

// CountHeldBy 统计用户在 jam 中占用的乐器位数
func (r *SlotRepo) CountHeldBy(ctx context.Context, jamId, userId string) (int64, error) {
	var n int64
	err := r.db.Conn(ctx).Model(&jam.Slot{}).
		Where("jam_id = ? AND occupant_user_id = ?", jamId, userId).
		Count(&n).Error
	return n, err
}

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

	"github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/go-arcade/ensemble/pkg/database"
	"gorm.io/gorm"
)

// ErrStaleVersion jam 行的 version 已被其他写入者推进
var ErrStaleVersion = errors.New("jam version is stale")

type IJamRepository interface {
	Create(ctx context.Context, j *jam.Jam) error
	Get(ctx context.Context, jamId string) (*jam.Jam, error)
	GetByShareCode(ctx context.Context, code string) (*jam.Jam, error)
	Bump(ctx context.Context, jamId string, version int64, actor jam.Actor) error
	UpdateStatus(ctx context.Context, jamId string, status jam.LifecycleStatus, isActive bool, actor jam.Actor) error
	UpdateLeader(ctx context.Context, jamId, leaderUserId string, actor jam.Actor) error
	ListByStatus(ctx context.Context, status jam.LifecycleStatus, limit int) ([]jam.Jam, error)
}

type JamRepo struct {
	db database.DB
}

func NewJamRepo(db database.DB) IJamRepository {
	return &JamRepo{db: db}
}

// Create 创建 jam
func (r *JamRepo) Create(ctx context.Context, j *jam.Jam) error {
	return r.db.Conn(ctx).Create(j).Error
}

// Get 按 jamId 获取，不存在时返回 gorm.ErrRecordNotFound
func (r *JamRepo) Get(ctx context.Context, jamId string) (*jam.Jam, error) {
	var j jam.Jam
	err := r.db.Conn(ctx).Where("jam_id = ?", jamId).First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// GetByShareCode 按分享码获取
func (r *JamRepo) GetByShareCode(ctx context.Context, code string) (*jam.Jam, error) {
	var j jam.Jam
	err := database.ReadConn(ctx, r.db).Where("share_code = ?", code).First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Bump 以 version 做比较并递增，version 不匹配时返回 ErrStaleVersion
func (r *JamRepo) Bump(ctx context.Context, jamId string, version int64, actor jam.Actor) error {
	res := r.db.Conn(ctx).Model(&jam.Jam{}).
		Where("jam_id = ? AND version = ?", jamId, version).
		Updates(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_by": actor,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// UpdateStatus 更新生命周期状态
func (r *JamRepo) UpdateStatus(ctx context.Context, jamId string, status jam.LifecycleStatus, isActive bool, actor jam.Actor) error {
	return r.db.Conn(ctx).Model(&jam.Jam{}).
		Where("jam_id = ?", jamId).
		Updates(map[string]any{
			"status":     status,
			"is_active":  isActive,
			"updated_by": actor,
		}).Error
}

// UpdateLeader 写入 leader
func (r *JamRepo) UpdateLeader(ctx context.Context, jamId, leaderUserId string, actor jam.Actor) error {
	return r.db.Conn(ctx).Model(&jam.Jam{}).
		Where("jam_id = ?", jamId).
		Updates(map[string]any{
			"leader_user_id": leaderUserId,
			"updated_by":     actor,
		}).Error
}

// ListByStatus 列出某状态的 jam，按创建时间倒序
func (r *JamRepo) ListByStatus(ctx context.Context, status jam.LifecycleStatus, limit int) ([]jam.Jam, error) {
	var jams []jam.Jam
	q := database.ReadConn(ctx, r.db).Where("status = ? AND is_active = ?", status, true).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&jams).Error
	return jams, err
}

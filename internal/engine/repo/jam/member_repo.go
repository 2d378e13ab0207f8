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

	"github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/go-arcade/ensemble/pkg/database"
	"gorm.io/gorm/clause"
)

type IMembershipRepository interface {
	Ensure(ctx context.Context, m *jam.Membership) error
	Get(ctx context.Context, jamId, userId string) (*jam.Membership, error)
	ListByJam(ctx context.Context, jamId string) ([]jam.Membership, error)
	Delete(ctx context.Context, jamId, userId string) error
	SetRoleFlag(ctx context.Context, jamId, userId string, flag jam.RoleFlag, actor jam.Actor) error
}

type MembershipRepo struct {
	db database.DB
}

func NewMembershipRepo(db database.DB) IMembershipRepository {
	return &MembershipRepo{db: db}
}

// Ensure 幂等插入，已存在时保持原记录不变
func (r *MembershipRepo) Ensure(ctx context.Context, m *jam.Membership) error {
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jam_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(m).Error
}

// Get 获取成员关系，不存在时返回 gorm.ErrRecordNotFound
func (r *MembershipRepo) Get(ctx context.Context, jamId, userId string) (*jam.Membership, error) {
	var m jam.Membership
	err := r.db.Conn(ctx).Where("jam_id = ? AND user_id = ?", jamId, userId).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByJam 列出 jam 成员，按加入顺序
func (r *MembershipRepo) ListByJam(ctx context.Context, jamId string) ([]jam.Membership, error) {
	var members []jam.Membership
	err := r.db.Conn(ctx).Where("jam_id = ?", jamId).Order("id ASC").Find(&members).Error
	return members, err
}

// Delete 删除成员关系
func (r *MembershipRepo) Delete(ctx context.Context, jamId, userId string) error {
	return r.db.Conn(ctx).Where("jam_id = ? AND user_id = ?", jamId, userId).
		Delete(&jam.Membership{}).Error
}

// SetRoleFlag 更新角色标记，成员不存在时为空操作
func (r *MembershipRepo) SetRoleFlag(ctx context.Context, jamId, userId string, flag jam.RoleFlag, actor jam.Actor) error {
	return r.db.Conn(ctx).Model(&jam.Membership{}).
		Where("jam_id = ? AND user_id = ?", jamId, userId).
		Updates(map[string]any{
			"role_flag":  flag,
			"updated_by": actor,
		}).Error
}

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

	"github.com/go-arcade/ensemble/internal/engine/model/directory"
	"github.com/go-arcade/ensemble/pkg/database"
	"gorm.io/gorm/clause"
)

type IRolePriorityRepository interface {
	List(ctx context.Context) ([]directory.RolePriority, error)
	Upsert(ctx context.Context, priorities []directory.RolePriority) error
}

type RolePriorityRepo struct {
	db database.DB
}

func NewRolePriorityRepo(db database.DB) IRolePriorityRepository {
	return &RolePriorityRepo{db: db}
}

// List 列出所有角色优先级
func (r *RolePriorityRepo) List(ctx context.Context) ([]directory.RolePriority, error) {
	var items []directory.RolePriority
	err := database.ReadConn(ctx, r.db).Order("rank_no ASC, role_code ASC").Find(&items).Error
	return items, err
}

// Upsert 按 role_code 插入或更新优先级
func (r *RolePriorityRepo) Upsert(ctx context.Context, priorities []directory.RolePriority) error {
	if len(priorities) == 0 {
		return nil
	}
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"rank_no", "updated_at"}),
		}).
		Create(&priorities).Error
}

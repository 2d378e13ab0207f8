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

type IUserRepository interface {
	ListByIds(ctx context.Context, userIds []string) ([]directory.User, error)
	Upsert(ctx context.Context, users []directory.User) error
}

type UserRepo struct {
	db database.DB
}

func NewUserRepo(db database.DB) IUserRepository {
	return &UserRepo{db: db}
}

// ListByIds 批量获取用户
func (r *UserRepo) ListByIds(ctx context.Context, userIds []string) ([]directory.User, error) {
	if len(userIds) == 0 {
		return nil, nil
	}
	var users []directory.User
	err := r.db.Conn(ctx).Where("user_id IN ?", userIds).Find(&users).Error
	return users, err
}

// Upsert 写入用户，已存在时更新显示名
func (r *UserRepo) Upsert(ctx context.Context, users []directory.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
		}).
		Create(&users).Error
}

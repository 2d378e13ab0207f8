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

type IClanMemberRepository interface {
	Get(ctx context.Context, clanId, userId string) (*directory.ClanMember, error)
	Upsert(ctx context.Context, member *directory.ClanMember) error
}

type ClanMemberRepo struct {
	db database.DB
}

func NewClanMemberRepo(db database.DB) IClanMemberRepository {
	return &ClanMemberRepo{db: db}
}

// Get 获取公会成员，不存在时返回 gorm.ErrRecordNotFound
func (r *ClanMemberRepo) Get(ctx context.Context, clanId, userId string) (*directory.ClanMember, error) {
	var m directory.ClanMember
	err := r.db.Conn(ctx).Where("clan_id = ? AND user_id = ?", clanId, userId).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert 写入公会成员角色
func (r *ClanMemberRepo) Upsert(ctx context.Context, member *directory.ClanMember) error {
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clan_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rank_no", "updated_at"}),
		}).
		Create(member).Error
}

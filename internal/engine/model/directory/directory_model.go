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
	"github.com/go-arcade/ensemble/internal/engine/model"
	"github.com/go-arcade/ensemble/pkg/database"
)

func init() {
	database.RegisterModels(&RolePriority{}, &ClanMember{}, &User{})
}

// RolePriority 乐器角色优先级，Rank 越小优先级越高
type RolePriority struct {
	model.BaseModel
	RoleCode string `gorm:"column:role_code;size:32;uniqueIndex:uk_role_code" json:"roleCode"`
	Rank     int    `gorm:"column:rank_no" json:"rank"`
}

func (RolePriority) TableName() string {
	return "t_role_priority"
}

// ClanMember 公会成员及其角色等级，1 和 2 为管理角色
type ClanMember struct {
	model.BaseModel
	ClanId string `gorm:"column:clan_id;size:64;uniqueIndex:uk_clan_member" json:"clanId"`
	UserId string `gorm:"column:user_id;size:64;uniqueIndex:uk_clan_member" json:"userId"`
	Rank   int    `gorm:"column:rank_no" json:"rank"`
}

func (ClanMember) TableName() string {
	return "t_clan_member"
}

type User struct {
	model.BaseModel
	UserId      string `gorm:"column:user_id;size:64;uniqueIndex:uk_user_id" json:"userId"`
	DisplayName string `gorm:"column:display_name;size:128" json:"displayName"`
}

func (User) TableName() string {
	return "t_user"
}

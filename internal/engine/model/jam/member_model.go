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

import "github.com/go-arcade/ensemble/internal/engine/model"

// Membership 用户在 jam 中的成员关系，RoleFlag 只由 leader 计算写入
type Membership struct {
	model.BaseModel
	JamId     string   `gorm:"column:jam_id;size:64;uniqueIndex:uk_jam_member" json:"jamId"`
	UserId    string   `gorm:"column:user_id;size:64;uniqueIndex:uk_jam_member;index:idx_member_user" json:"userId"`
	RoleFlag  RoleFlag `gorm:"column:role_flag;size:16" json:"roleFlag"`
	UpdatedBy Actor    `gorm:"column:updated_by;size:80" json:"updatedBy"`
}

func (Membership) TableName() string {
	return "t_jam_member"
}

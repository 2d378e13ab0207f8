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
	"github.com/go-arcade/ensemble/internal/engine/model"
	"github.com/go-arcade/ensemble/pkg/database"
	"gorm.io/datatypes"
)

func init() {
	database.RegisterModels(&Jam{}, &Slot{}, &Membership{}, &EvaluationTask{}, &EvaluationResult{})
}

// SongMeta 曲目信息，以 JSON 列存储
type SongMeta struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Genre  string `json:"genre,omitempty"`
	BPM    int    `json:"bpm,omitempty"`
	Key    string `json:"key,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Jam 一次组队演奏
type Jam struct {
	model.BaseModel
	JamId         string                       `gorm:"column:jam_id;size:64;uniqueIndex:uk_jam_id" json:"jamId"`
	ShareCode     string                       `gorm:"column:share_code;size:32;uniqueIndex:uk_jam_share_code" json:"shareCode"`
	Title         string                       `gorm:"column:title;size:255" json:"title"`
	SongMeta      datatypes.JSONType[SongMeta] `gorm:"column:song_meta" json:"songMeta"`
	Secret        bool                         `gorm:"column:secret" json:"secret"`
	PasswordHash  string                       `gorm:"column:password_hash;size:128" json:"-"`
	ClanId        string                       `gorm:"column:clan_id;size:64;index:idx_jam_clan" json:"clanId"`
	CreatorUserId string                       `gorm:"column:creator_user_id;size:64" json:"creatorUserId"`
	LeaderUserId  string                       `gorm:"column:leader_user_id;size:64" json:"leaderUserId"`
	Status        LifecycleStatus              `gorm:"column:status;size:16;index:idx_jam_status" json:"status"`
	IsActive      bool                         `gorm:"column:is_active" json:"isActive"`
	Version       int64                        `gorm:"column:version" json:"version"`
	UpdatedBy     Actor                        `gorm:"column:updated_by;size:80" json:"updatedBy"`
}

func (Jam) TableName() string {
	return "t_jam"
}

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
	"time"

	"github.com/go-arcade/ensemble/internal/engine/model"
)

// Slot 乐器位，只会被清空，不会被删除
type Slot struct {
	model.BaseModel
	SlotId         string     `gorm:"column:slot_id;size:64;uniqueIndex:uk_slot_id" json:"slotId"`
	JamId          string     `gorm:"column:jam_id;size:64;index:idx_slot_jam" json:"jamId"`
	RoleCode       string     `gorm:"column:role_code;size:32" json:"roleCode"`
	Position       int        `gorm:"column:position" json:"position"`
	OccupantUserId *string    `gorm:"column:occupant_user_id;size:64" json:"occupantUserId,omitempty"`
	OccupiedAt     *time.Time `gorm:"column:occupied_at" json:"occupiedAt,omitempty"`
	UpdatedBy      Actor      `gorm:"column:updated_by;size:80" json:"updatedBy"`
}

func (Slot) TableName() string {
	return "t_jam_slot"
}

// Occupant returns the occupant id and whether the slot is taken.
func (s *Slot) Occupant() (string, bool) {
	if s.OccupantUserId == nil {
		return "", false
	}
	return *s.OccupantUserId, true
}

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

import "time"

// CreateJamReq 创建 jam 请求
type CreateJamReq struct {
	Title         string   `json:"title"`
	SongMeta      SongMeta `json:"songMeta"`
	RoleCodes     []string `json:"roleCodes"`
	Secret        bool     `json:"secret"`
	Password      string   `json:"password,omitempty"`
	ClanId        string   `json:"clanId,omitempty"`
	CreatorUserId string   `json:"creatorUserId"`
}

// CreateJamResp 创建 jam 响应
type CreateJamResp struct {
	JamId     string   `json:"jamId"`
	ShareCode string   `json:"shareCode"`
	SlotIds   []string `json:"slotIds"`
}

// JoinReq 占用乐器位请求，Password 只在私密 jam 且非成员时需要
type JoinReq struct {
	JamId    string `json:"jamId"`
	SlotId   string `json:"slotId"`
	UserId   string `json:"userId"`
	Password string `json:"password,omitempty"`
}

type SlotView struct {
	SlotId       string     `json:"slotId"`
	RoleCode     string     `json:"roleCode"`
	Position     int        `json:"position"`
	OccupantId   string     `json:"occupantId,omitempty"`
	OccupantName string     `json:"occupantName,omitempty"`
	OccupiedAt   *time.Time `json:"occupiedAt,omitempty"`
}

type MemberView struct {
	UserId   string   `json:"userId"`
	Name     string   `json:"name"`
	RoleFlag RoleFlag `json:"roleFlag"`
}

// ViewerPermissions 当前查看者可执行的操作
type ViewerPermissions struct {
	IsMember  bool `json:"isMember"`
	IsLeader  bool `json:"isLeader"`
	CanManage bool `json:"canManage"`
	CanJoin   bool `json:"canJoin"`
}

// JamDetail jam 详情
type JamDetail struct {
	JamId       string            `json:"jamId"`
	ShareCode   string            `json:"shareCode"`
	Title       string            `json:"title"`
	SongMeta    SongMeta          `json:"songMeta"`
	Secret      bool              `json:"secret"`
	ClanId      string            `json:"clanId,omitempty"`
	Status      LifecycleStatus   `json:"status"`
	CreatorId   string            `json:"creatorId"`
	LeaderId    string            `json:"leaderId"`
	LeaderName  string            `json:"leaderName"`
	Full        bool              `json:"full"`
	Slots       []SlotView        `json:"slots"`
	Members     []MemberView      `json:"members"`
	Permissions ViewerPermissions `json:"permissions"`
	Version     int64             `json:"version"`
}

// EvaluationInput 对一个演奏者的评价
type EvaluationInput struct {
	TargetUserId string  `json:"targetUserId"`
	Score        float64 `json:"score"`
	MoodMaker    bool    `json:"moodMaker"`
}

// PendingEvaluation 待评价任务摘要
type PendingEvaluation struct {
	JamId     string    `json:"jamId"`
	Title     string    `json:"title"`
	Targets   []string  `json:"targets"`
	CreatedAt time.Time `json:"createdAt"`
}

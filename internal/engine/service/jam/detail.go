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
	"fmt"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
)

// GetDetail 返回 jam 详情及查看者权限，不经过 actor，leader 可能略有滞后
func (s *Service) GetDetail(ctx context.Context, jamId, viewerUserId string) (detail *model.JamDetail, err error) {
	ctx, done := s.observe(ctx, "detail")
	defer done(&err)

	if jamId == "" {
		return nil, fmt.Errorf("jam is required: %w", ErrInvalidArgument)
	}

	// 1. 读取 jam、乐器位和成员
	j, err := s.getJam(ctx, jamId)
	if err != nil {
		return nil, err
	}
	slots, err := s.registry.slots.ListByJam(ctx, jamId)
	if err != nil {
		return nil, infra("list slots", err)
	}
	members, err := s.members.ListByJam(ctx, jamId)
	if err != nil {
		return nil, infra("list members", err)
	}

	// 2. 解析显示名
	ids := make([]string, 0, len(slots)+len(members)+1)
	ids = append(ids, occupants(slots)...)
	for _, m := range members {
		ids = append(ids, m.UserId)
	}
	if j.LeaderUserId != "" {
		ids = append(ids, j.LeaderUserId)
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return nil, infra("resolve display names", err)
	}

	// 3. 组装视图
	detail = &model.JamDetail{
		JamId:      j.JamId,
		ShareCode:  j.ShareCode,
		Title:      j.Title,
		SongMeta:   j.SongMeta.Data(),
		Secret:     j.Secret,
		ClanId:     j.ClanId,
		Status:     j.Status,
		CreatorId:  j.CreatorUserId,
		LeaderId:   j.LeaderUserId,
		LeaderName: displayName(names, j.LeaderUserId),
		Full:       len(slots) > 0,
		Slots:      make([]model.SlotView, 0, len(slots)),
		Members:    make([]model.MemberView, 0, len(members)),
		Version:    j.Version,
	}
	vacant := false
	for _, sl := range slots {
		view := model.SlotView{SlotId: sl.SlotId, RoleCode: sl.RoleCode, Position: sl.Position}
		if uid, ok := sl.Occupant(); ok {
			view.OccupantId = uid
			view.OccupantName = displayName(names, uid)
			view.OccupiedAt = sl.OccupiedAt
		} else {
			vacant = true
		}
		detail.Slots = append(detail.Slots, view)
	}
	detail.Full = detail.Full && !vacant

	isMember := false
	for _, m := range members {
		detail.Members = append(detail.Members, model.MemberView{
			UserId:   m.UserId,
			Name:     displayName(names, m.UserId),
			RoleFlag: m.RoleFlag,
		})
		if m.UserId == viewerUserId {
			isMember = true
		}
	}

	// 4. 查看者权限
	canManage, err := s.guard.canManage(ctx, j, viewerUserId)
	if err != nil {
		return nil, err
	}
	detail.Permissions = model.ViewerPermissions{
		IsMember:  isMember,
		IsLeader:  viewerUserId != "" && viewerUserId == j.LeaderUserId,
		CanManage: canManage && !j.Status.IsTerminal(),
		CanJoin:   viewerUserId != "" && j.Status == model.StatusForming && vacant,
	}
	return detail, nil
}

func displayName(names map[string]string, userId string) string {
	if n, ok := names[userId]; ok {
		return n
	}
	return userId
}

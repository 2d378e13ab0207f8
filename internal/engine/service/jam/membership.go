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
	"errors"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"gorm.io/gorm"
)

// ledger 维护 jam 成员关系，成员存在当且仅当用户占用至少一个乐器位，创建者除外
type ledger struct {
	members repojam.IMembershipRepository
	slots   repojam.ISlotRepository
}

func (l *ledger) ensureMember(ctx context.Context, jamId, userId string, role model.RoleFlag, actor model.Actor) error {
	err := l.members.Ensure(ctx, &model.Membership{
		JamId:     jamId,
		UserId:    userId,
		RoleFlag:  role,
		UpdatedBy: actor,
	})
	return infra("ensure member", err)
}

// removeIfOrphaned 用户不再占用任何乐器位时删除成员关系，返回是否删除
func (l *ledger) removeIfOrphaned(ctx context.Context, j *model.Jam, userId string) (bool, error) {
	if userId == j.CreatorUserId {
		return false, nil
	}
	held, err := l.slots.CountHeldBy(ctx, j.JamId, userId)
	if err != nil {
		return false, infra("count held slots", err)
	}
	if held > 0 {
		return false, nil
	}
	if err := l.members.Delete(ctx, j.JamId, userId); err != nil {
		return false, infra("remove member", err)
	}
	return true, nil
}

func (l *ledger) isMember(ctx context.Context, jamId, userId string) (bool, error) {
	if userId == "" {
		return false, nil
	}
	_, err := l.members.Get(ctx, jamId, userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, infra("get member", err)
	}
	return true, nil
}

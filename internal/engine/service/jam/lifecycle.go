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
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/statemachine"
)

const (
	EventConfirm statemachine.Event = "confirm"
	EventEnd     statemachine.Event = "end"
	EventDisband statemachine.Event = "disband"
)

// NewLifecycle builds the jam transition table:
// FORMING -> CONFIRMED -> ENDED, FORMING|CONFIRMED -> DISBANDED.
func NewLifecycle() *statemachine.Machine[model.LifecycleStatus] {
	m := statemachine.New(model.StatusForming).
		On(model.StatusForming, EventConfirm, model.StatusConfirmed).
		On(model.StatusConfirmed, EventEnd, model.StatusEnded).
		On(model.StatusForming, EventDisband, model.StatusDisbanded).
		On(model.StatusConfirmed, EventDisband, model.StatusDisbanded).
		Terminal(model.StatusEnded, model.StatusDisbanded)

	m.AddValidator(func(_ context.Context, from, to model.LifecycleStatus, _ statemachine.Event) error {
		if !from.IsValid() || !to.IsValid() {
			return fmt.Errorf("unknown status %q -> %q: %w", from, to, ErrInvalidTransition)
		}
		return nil
	})
	m.OnTransition(func(ctx context.Context, from, to model.LifecycleStatus, ev statemachine.Event) error {
		log.WithContext(ctx).Debugw("jam lifecycle transition", "from", from, "to", to, "event", ev)
		return nil
	})
	return m
}

// ensureForming 只有 FORMING 状态允许修改乐器位
func ensureForming(j *model.Jam) error {
	switch j.Status {
	case model.StatusForming:
		return nil
	case model.StatusConfirmed, model.StatusEnded, model.StatusDisbanded:
		return fmt.Errorf("jam %s is %s: %w", j.JamId, j.Status, ErrJamLocked)
	}
	return fmt.Errorf("jam %s has unknown status %q: %w", j.JamId, j.Status, ErrJamLocked)
}

// guard 判断 actor 能否管理 jam：当前 leader，或所属公会中 rank 1、2 的成员
type guard struct {
	clans directory.ClanRoles
}

func (g *guard) canManage(ctx context.Context, j *model.Jam, userId string) (bool, error) {
	if userId == "" {
		return false, nil
	}
	if j.LeaderUserId == userId {
		return true, nil
	}
	if j.ClanId == "" {
		return false, nil
	}
	rank, ok, err := g.clans.Rank(ctx, j.ClanId, userId)
	if err != nil {
		return false, infra("lookup clan role", err)
	}
	return ok && directory.IsElevated(rank), nil
}

func (g *guard) check(ctx context.Context, j *model.Jam, userId string) error {
	ok, err := g.canManage(ctx, j, userId)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s cannot manage jam %s: %w", userId, j.JamId, ErrPermissionDenied)
	}
	return nil
}

// target 校验状态并返回 ev 对应的目标状态
func (s *Service) target(ctx context.Context, j *model.Jam, ev statemachine.Event) (model.LifecycleStatus, error) {
	switch j.Status {
	case model.StatusForming, model.StatusConfirmed:
	case model.StatusEnded, model.StatusDisbanded:
		return "", fmt.Errorf("jam %s is %s: %w", j.JamId, j.Status, ErrInvalidTransition)
	default:
		return "", fmt.Errorf("jam %s has unknown status %q: %w", j.JamId, j.Status, ErrInvalidTransition)
	}
	to, err := s.lifecycle.Fire(ctx, j.Status, ev)
	if err != nil {
		return "", fmt.Errorf("jam %s: %w", j.JamId, err)
	}
	return to, nil
}

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
	"fmt"
	"strings"
	"time"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/go-arcade/ensemble/pkg/id"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/go-arcade/ensemble/pkg/statemachine"
	"github.com/go-arcade/ensemble/pkg/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

var tracer = trace.Tracer("github.com/go-arcade/ensemble/internal/engine/service/jam")

// Deps 是 Service 的依赖
type Deps struct {
	DB         database.DB
	Jams       repojam.IJamRepository
	Slots      repojam.ISlotRepository
	Members    repojam.IMembershipRepository
	Evals      repojam.IEvaluationRepository
	Users      directory.UserDirectory
	Priorities directory.RolePriorityTable
	Clans      directory.ClanRoles
	Actors     *actor.ActorSystem
	Bus        event.Publisher
	Metrics    *metrics.EngineMetrics
}

type Option func(*Service)

// WithClock 替换时间源，occupied_at 与事件时间都取自它
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// Service is the jam allocation, lifecycle and succession engine. Every
// mutation of one jam runs on that jam's actor inside a single transaction
// that also advances the jam version; events are published after commit.
type Service struct {
	db      database.DB
	jams    repojam.IJamRepository
	members repojam.IMembershipRepository
	evals   repojam.IEvaluationRepository
	users   directory.UserDirectory
	actors  *actor.ActorSystem
	bus     event.Publisher
	metrics *metrics.EngineMetrics

	lifecycle   *statemachine.Machine[model.LifecycleStatus]
	registry    *registry
	ledger      *ledger
	leadership  *leadership
	guard       *guard
	coordinator *coordinator

	bcryptCost  int
	remindBatch int
	now         func() time.Time
}

func NewService(d Deps, opts ...Option) *Service {
	s := &Service{
		db:          d.DB,
		jams:        d.Jams,
		members:     d.Members,
		evals:       d.Evals,
		users:       d.Users,
		actors:      d.Actors,
		bus:         d.Bus,
		metrics:     d.Metrics,
		lifecycle:   NewLifecycle(),
		bcryptCost:  bcrypt.DefaultCost,
		remindBatch: reminderBatch,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	clock := func() time.Time { return s.now() }

	s.registry = &registry{slots: d.Slots, now: clock}
	s.ledger = &ledger{members: d.Members, slots: d.Slots}
	s.leadership = &leadership{jams: d.Jams, slots: d.Slots, members: d.Members, ranks: d.Priorities, now: clock}
	s.guard = &guard{clans: d.Clans}
	s.coordinator = &coordinator{evals: d.Evals, slots: d.Slots, users: d.Users, now: clock}
	return s
}

// observe 为一次操作开启 span，返回的函数记录耗时与结果
func (s *Service) observe(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, "jam."+op)
	start := time.Now()
	return ctx, func(errp *error) {
		s.metrics.ObserveOperation(op, classify(*errp), time.Since(start))
		trace.End(span, *errp)
	}
}

// mutate 在 jam 的 actor 上以一个事务执行 fn，提交后发布事件
func (s *Service) mutate(ctx context.Context, op, jamId string, fn func(ctx context.Context, box *outbox) error) error {
	return s.actors.Do(ctx, jamId, func(ctx context.Context) error {
		box := &outbox{}
		err := s.db.Transaction(ctx, func(ctx context.Context) error {
			return fn(ctx, box)
		})
		if err != nil {
			return wrapTx(op, err)
		}
		box.flush(s.bus)
		return nil
	})
}

func (s *Service) getJam(ctx context.Context, jamId string) (*model.Jam, error) {
	j, err := s.jams.Get(ctx, jamId)
	if err != nil {
		return nil, notFoundOr("get jam", "jam "+jamId, err)
	}
	return j, nil
}

// bump 推进 jam version，version 已变化说明有其他进程并发修改
func (s *Service) bump(ctx context.Context, j *model.Jam, by model.Actor) error {
	if err := s.jams.Bump(ctx, j.JamId, j.Version, by); err != nil {
		return staleOr("jam "+j.JamId, err)
	}
	j.Version++
	return nil
}

// Create 创建 jam，创建者成为成员和初始 leader
func (s *Service) Create(ctx context.Context, req *model.CreateJamReq) (resp *model.CreateJamResp, err error) {
	ctx, done := s.observe(ctx, "create")
	defer done(&err)

	// 1. 校验请求
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	// 2. 私密 jam 的密码
	var hash string
	if req.Secret {
		b, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				return nil, fmt.Errorf("password too long: %w", ErrInvalidArgument)
			}
			return nil, fmt.Errorf("hash jam password failed: %w", err)
		}
		hash = string(b)
	}

	// 3. 构建 jam
	creator := model.User(req.CreatorUserId)
	j := &model.Jam{
		JamId:         id.GetUUID(),
		ShareCode:     shareCode(),
		Title:         strings.TrimSpace(req.Title),
		SongMeta:      datatypes.NewJSONType(req.SongMeta),
		Secret:        req.Secret,
		PasswordHash:  hash,
		ClanId:        req.ClanId,
		CreatorUserId: req.CreatorUserId,
		LeaderUserId:  req.CreatorUserId,
		Status:        s.lifecycle.Initial(),
		IsActive:      true,
		UpdatedBy:     creator,
	}

	// 4. 同一事务内写入 jam、乐器位和创建者成员关系
	var slots []model.Slot
	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.jams.Create(ctx, j); err != nil {
			return infra("create jam", err)
		}
		var err error
		if slots, err = s.registry.defineSlots(ctx, j.JamId, req.RoleCodes, creator); err != nil {
			return err
		}
		return s.ledger.ensureMember(ctx, j.JamId, req.CreatorUserId, model.RoleLeader, creator)
	})
	if err != nil {
		log.Errorw("create jam failed", "title", j.Title, "creator", req.CreatorUserId, "error", err)
		return nil, wrapTx("create jam", err)
	}

	log.Infow("success create jam", "jamId", j.JamId, "creator", req.CreatorUserId, "slots", len(slots))

	resp = &model.CreateJamResp{JamId: j.JamId, ShareCode: j.ShareCode, SlotIds: make([]string, 0, len(slots))}
	for _, sl := range slots {
		resp.SlotIds = append(resp.SlotIds, sl.SlotId)
	}
	return resp, nil
}

func validateCreate(req *model.CreateJamReq) error {
	switch {
	case req == nil:
		return fmt.Errorf("empty request: %w", ErrInvalidArgument)
	case strings.TrimSpace(req.Title) == "":
		return fmt.Errorf("title is required: %w", ErrInvalidArgument)
	case req.CreatorUserId == "":
		return fmt.Errorf("creator is required: %w", ErrInvalidArgument)
	case len(req.RoleCodes) == 0:
		return fmt.Errorf("at least one role is required: %w", ErrInvalidArgument)
	case req.Secret && req.Password == "":
		return fmt.Errorf("secret jam requires a password: %w", ErrInvalidArgument)
	case req.SongMeta.BPM < 0:
		return fmt.Errorf("bpm must not be negative: %w", ErrInvalidArgument)
	}
	for i, code := range req.RoleCodes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("role %d is empty: %w", i, ErrInvalidArgument)
		}
	}
	return nil
}

func shareCode() string {
	if code := id.ShortId(); code != "" {
		return code
	}
	return id.GetUUIDWithoutDashes()[:12]
}

// Join 占用一个空闲乐器位
func (s *Service) Join(ctx context.Context, req *model.JoinReq) (err error) {
	ctx, done := s.observe(ctx, "join")
	defer done(&err)

	if req == nil || req.JamId == "" || req.SlotId == "" || req.UserId == "" {
		return fmt.Errorf("jam, slot and user are required: %w", ErrInvalidArgument)
	}
	by := model.User(req.UserId)

	err = s.mutate(ctx, "join", req.JamId, func(ctx context.Context, box *outbox) error {
		// 1. 校验状态
		j, err := s.getJam(ctx, req.JamId)
		if err != nil {
			return err
		}
		if err := ensureForming(j); err != nil {
			return err
		}

		// 2. 私密 jam 的非成员需要密码
		if err := s.checkPassword(ctx, j, req.UserId, req.Password); err != nil {
			return err
		}

		// 3. 占用乐器位
		if err := s.bump(ctx, j, by); err != nil {
			return err
		}
		if _, err := s.registry.occupy(ctx, j.JamId, req.SlotId, req.UserId, by); err != nil {
			return err
		}
		if err := s.ledger.ensureMember(ctx, j.JamId, req.UserId, model.RoleNormal, by); err != nil {
			return err
		}

		// 4. 重算 leader
		ev, err := s.leadership.recompute(ctx, j)
		if err != nil {
			return err
		}
		box.add(ev)
		return nil
	})
	if err != nil {
		log.Warnw("join jam failed", "jamId", req.JamId, "slotId", req.SlotId, "userId", req.UserId, "error", err)
		return err
	}
	log.Infow("success join jam", "jamId", req.JamId, "slotId", req.SlotId, "userId", req.UserId)
	return nil
}

func (s *Service) checkPassword(ctx context.Context, j *model.Jam, userId, password string) error {
	if !j.Secret {
		return nil
	}
	member, err := s.ledger.isMember(ctx, j.JamId, userId)
	if err != nil {
		return err
	}
	if member {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(j.PasswordHash), []byte(password)) != nil {
		return fmt.Errorf("wrong password for jam %s: %w", j.JamId, ErrPermissionDenied)
	}
	return nil
}

// Cancel 用户退出自己占用的乐器位，不是占用者时为空操作
func (s *Service) Cancel(ctx context.Context, jamId, slotId, userId string) (err error) {
	ctx, done := s.observe(ctx, "cancel")
	defer done(&err)

	if jamId == "" || slotId == "" || userId == "" {
		return fmt.Errorf("jam, slot and user are required: %w", ErrInvalidArgument)
	}
	err = s.mutate(ctx, "cancel", jamId, func(ctx context.Context, box *outbox) error {
		return s.release(ctx, box, jamId, slotId, userId, userId)
	})
	if err != nil {
		log.Warnw("cancel slot failed", "jamId", jamId, "slotId", slotId, "userId", userId, "error", err)
	}
	return err
}

// Kick 由 leader 或公会管理角色把占用者移出乐器位
func (s *Service) Kick(ctx context.Context, jamId, slotId, actorUserId, targetUserId string) (err error) {
	ctx, done := s.observe(ctx, "kick")
	defer done(&err)

	if jamId == "" || slotId == "" || actorUserId == "" || targetUserId == "" {
		return fmt.Errorf("jam, slot, actor and target are required: %w", ErrInvalidArgument)
	}
	err = s.mutate(ctx, "kick", jamId, func(ctx context.Context, box *outbox) error {
		return s.release(ctx, box, jamId, slotId, targetUserId, actorUserId)
	})
	if err != nil {
		log.Warnw("kick failed", "jamId", jamId, "slotId", slotId, "actor", actorUserId, "target", targetUserId, "error", err)
		return err
	}
	log.Infow("success kick", "jamId", jamId, "slotId", slotId, "actor", actorUserId, "target", targetUserId)
	return nil
}

// release 清空 occupant 持有的乐器位；byUserId 与 occupant 不同时需要管理权限
func (s *Service) release(ctx context.Context, box *outbox, jamId, slotId, occupant, byUserId string) error {
	by := model.User(byUserId)
	kicked := occupant != byUserId

	j, err := s.getJam(ctx, jamId)
	if err != nil {
		return err
	}
	if err := ensureForming(j); err != nil {
		return err
	}
	if kicked {
		if err := s.guard.check(ctx, j, byUserId); err != nil {
			return err
		}
	}

	slot, err := s.registry.slotOf(ctx, jamId, slotId)
	if err != nil {
		return err
	}
	if current, ok := slot.Occupant(); !ok || current != occupant {
		log.Debugw("slot not held by user, nothing to release", "jamId", jamId, "slotId", slotId, "userId", occupant)
		return nil
	}

	if err := s.bump(ctx, j, by); err != nil {
		return err
	}
	vacated, err := s.registry.vacate(ctx, slot, occupant, by)
	if err != nil {
		return err
	}
	if !vacated {
		return fmt.Errorf("slot %s changed concurrently: %w", slotId, ErrConflict)
	}
	if _, err := s.ledger.removeIfOrphaned(ctx, j, occupant); err != nil {
		return err
	}

	ev, err := s.leadership.recompute(ctx, j)
	if err != nil {
		return err
	}
	box.add(SlotVacated{
		JamId:    jamId,
		SlotId:   slotId,
		RoleCode: slot.RoleCode,
		UserId:   occupant,
		Kicked:   kicked,
		By:       byUserId,
		At:       s.now(),
	})
	box.add(ev)
	return nil
}

// Confirm FORMING -> CONFIRMED，要求所有乐器位已被占用
func (s *Service) Confirm(ctx context.Context, jamId, actorUserId string) (err error) {
	ctx, done := s.observe(ctx, "confirm")
	defer done(&err)

	return s.transition(ctx, jamId, actorUserId, EventConfirm, func(ctx context.Context, j *model.Jam, box *outbox) error {
		slots, err := s.registry.slots.ListByJam(ctx, j.JamId)
		if err != nil {
			return infra("list slots", err)
		}
		box.add(JamConfirmed{
			JamId:     j.JamId,
			LeaderId:  j.LeaderUserId,
			Occupants: occupants(slots),
			By:        actorUserId,
			At:        s.now(),
		})
		return nil
	})
}

// End CONFIRMED -> ENDED，并在同一事务内生成互评任务
func (s *Service) End(ctx context.Context, jamId, actorUserId string) (err error) {
	ctx, done := s.observe(ctx, "end")
	defer done(&err)

	return s.transition(ctx, jamId, actorUserId, EventEnd, func(ctx context.Context, j *model.Jam, box *outbox) error {
		evaluators, err := s.coordinator.generateTasks(ctx, j.JamId)
		if err != nil {
			return err
		}
		box.add(JamEnded{JamId: j.JamId, Evaluators: evaluators, By: actorUserId, At: s.now()})
		return nil
	})
}

// Disband FORMING|CONFIRMED -> DISBANDED，jam 同时被软删除
func (s *Service) Disband(ctx context.Context, jamId, actorUserId string) (err error) {
	ctx, done := s.observe(ctx, "disband")
	defer done(&err)

	return s.transition(ctx, jamId, actorUserId, EventDisband, func(_ context.Context, j *model.Jam, box *outbox) error {
		box.add(JamDisbanded{JamId: j.JamId, By: actorUserId, At: s.now()})
		return nil
	})
}

// transition 执行一次生命周期迁移：状态、满员（仅 confirm）、权限依次校验
func (s *Service) transition(ctx context.Context, jamId, actorUserId string, ev statemachine.Event,
	after func(ctx context.Context, j *model.Jam, box *outbox) error) error {
	if jamId == "" || actorUserId == "" {
		return fmt.Errorf("jam and actor are required: %w", ErrInvalidArgument)
	}
	by := model.User(actorUserId)

	var from, to model.LifecycleStatus
	err := s.mutate(ctx, string(ev), jamId, func(ctx context.Context, box *outbox) error {
		j, err := s.getJam(ctx, jamId)
		if err != nil {
			return err
		}
		from = j.Status
		if to, err = s.target(ctx, j, ev); err != nil {
			return err
		}

		if ev == EventConfirm {
			full, err := s.registry.isFull(ctx, j.JamId)
			if err != nil {
				return err
			}
			if !full {
				return fmt.Errorf("jam %s: %w", j.JamId, ErrNotFull)
			}
		}
		if err := s.guard.check(ctx, j, actorUserId); err != nil {
			return err
		}

		if err := s.bump(ctx, j, by); err != nil {
			return err
		}
		active := to != model.StatusDisbanded
		if err := s.jams.UpdateStatus(ctx, j.JamId, to, active, by); err != nil {
			return infra("update jam status", err)
		}
		j.Status, j.IsActive = to, active
		return after(ctx, j, box)
	})
	if err != nil {
		log.Warnw("jam transition failed", "jamId", jamId, "event", ev, "actor", actorUserId, "error", err)
		return err
	}

	s.metrics.ObserveTransition(string(from), string(to))
	log.Infow("success jam transition", "jamId", jamId, "from", from, "to", to, "actor", actorUserId)
	return nil
}

// SubmitEvaluation 提交互评，每个评价者在每个 jam 只能成功一次
func (s *Service) SubmitEvaluation(ctx context.Context, jamId, evaluatorUserId string, inputs []model.EvaluationInput) (err error) {
	ctx, done := s.observe(ctx, "submit_evaluation")
	defer done(&err)

	if jamId == "" || evaluatorUserId == "" {
		return fmt.Errorf("jam and evaluator are required: %w", ErrInvalidArgument)
	}
	normalized, err := normalize(evaluatorUserId, inputs)
	if err != nil {
		return err
	}

	var targets []string
	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.getJam(ctx, jamId); err != nil {
			return err
		}
		var err error
		targets, err = s.coordinator.submit(ctx, jamId, evaluatorUserId, normalized)
		return err
	})
	if err != nil {
		log.Warnw("submit evaluation failed", "jamId", jamId, "evaluator", evaluatorUserId, "error", err)
		return wrapTx("submit evaluation", err)
	}

	s.metrics.IncEvaluations()
	if s.bus != nil {
		s.bus.Publish(EvaluationSubmitted{JamId: jamId, EvaluatorId: evaluatorUserId, Targets: targets, At: s.now()})
	}
	log.Infow("success submit evaluation", "jamId", jamId, "evaluator", evaluatorUserId, "targets", len(targets))
	return nil
}

// GetPendingEvaluation 返回最新的一条待评价任务摘要，没有时返回 nil
func (s *Service) GetPendingEvaluation(ctx context.Context, userId string) (pending *model.PendingEvaluation, err error) {
	ctx, done := s.observe(ctx, "pending_evaluation")
	defer done(&err)

	if userId == "" {
		return nil, fmt.Errorf("user is required: %w", ErrInvalidArgument)
	}
	tasks, err := s.evals.ListPending(ctx, userId)
	if err != nil {
		return nil, infra("list pending evaluations", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	task := tasks[0]
	j, err := s.getJam(ctx, task.JamId)
	if err != nil {
		return nil, err
	}
	all, err := s.evals.ListTasksByJam(ctx, task.JamId)
	if err != nil {
		return nil, infra("list evaluation tasks", err)
	}

	pending = &model.PendingEvaluation{
		JamId:     j.JamId,
		Title:     j.Title,
		Targets:   make([]string, 0, len(all)),
		CreatedAt: task.CreatedAt,
	}
	for _, t := range all {
		if t.EvaluatorUserId != userId {
			pending.Targets = append(pending.Targets, t.EvaluatorUserId)
		}
	}
	return pending, nil
}

// GetByShareCode 通过分享码查找 jamId
func (s *Service) GetByShareCode(ctx context.Context, code string) (jamId string, err error) {
	ctx, done := s.observe(ctx, "share_code")
	defer done(&err)

	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("share code is required: %w", ErrInvalidArgument)
	}
	j, err := s.jams.GetByShareCode(ctx, code)
	if err != nil {
		return "", notFoundOr("get jam by share code", "share code "+code, err)
	}
	return j.JamId, nil
}

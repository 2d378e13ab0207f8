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
	"sync"
	"testing"
	"time"

	modeldir "github.com/go-arcade/ensemble/internal/engine/model/directory"
	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	repodir "github.com/go-arcade/ensemble/internal/engine/repo/directory"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/go-arcade/ensemble/pkg/id"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testClan = "clan-1"

var testRanks = directory.RankMap{"vocal": 1, "guitar": 2, "drums": 3}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now 每次调用前进一秒，保证占用时间严格递增
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Handle(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.EventName())
	}
	return out
}

func (r *recorder) ofType(name string) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, ev := range r.events {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     database.DB
	svc    *Service
	jams   repojam.IJamRepository
	slots  repojam.ISlotRepository
	evals  repojam.IEvaluationRepository
	users  *directory.UserDirectoryService
	clans  *directory.ClanRoleService
	bus    *event.EventBus
	events *recorder
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewMemory(id.GetUUIDWithoutDashes())
	require.NoError(t, err)
	require.NoError(t, db.DB().AutoMigrate(
		&model.Jam{}, &model.Slot{}, &model.Membership{}, &model.EvaluationTask{}, &model.EvaluationResult{},
		&modeldir.ClanMember{}, &modeldir.User{},
	))

	actors := actor.NewActorSystem(actor.Conf{})
	t.Cleanup(func() {
		actors.StopAll()
		if sqlDB, err := db.DB().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	bus := event.NewEventBus()
	rec := &recorder{}
	bus.RegisterHandler(event.AllEvents, rec)

	users := directory.NewUserDirectoryService(repodir.NewUserRepo(db), nil, time.Minute)
	clans := directory.NewClanRoleService(repodir.NewClanMemberRepo(db), nil, time.Minute)
	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}

	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		jams:   repojam.NewJamRepo(db),
		slots:  repojam.NewSlotRepo(db),
		evals:  repojam.NewEvaluationRepo(db),
		users:  users,
		clans:  clans,
		bus:    bus,
		events: rec,
		clock:  clock,
	}
	f.svc = NewService(Deps{
		DB:         db,
		Jams:       f.jams,
		Slots:      f.slots,
		Members:    repojam.NewMembershipRepo(db),
		Evals:      f.evals,
		Users:      users,
		Priorities: testRanks,
		Clans:      clans,
		Actors:     actors,
		Bus:        bus,
		Metrics:    metrics.NewEngineMetrics(prometheus.NewRegistry()),
	}, WithClock(clock.Now), WithBcryptCost(bcrypt.MinCost))

	for _, u := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, users.Register(f.ctx, u, "user "+u))
	}
	require.NoError(t, clans.SetRank(f.ctx, testClan, "A", 1))
	return f
}

// create 创建一个属于 testClan 的 jam，返回 jamId 与按声明顺序的 slotId
func (f *fixture) create(creator string, roles ...string) (string, []string) {
	f.t.Helper()
	resp, err := f.svc.Create(f.ctx, &model.CreateJamReq{
		Title:         "jam session",
		SongMeta:      model.SongMeta{Artist: "Queen", Title: "Bohemian Rhapsody", BPM: 72},
		RoleCodes:     roles,
		ClanId:        testClan,
		CreatorUserId: creator,
	})
	require.NoError(f.t, err)
	require.Len(f.t, resp.SlotIds, len(roles))
	return resp.JamId, resp.SlotIds
}

func (f *fixture) join(jamId, slotId, userId string) error {
	return f.svc.Join(f.ctx, &model.JoinReq{JamId: jamId, SlotId: slotId, UserId: userId})
}

func (f *fixture) jam(jamId string) *model.Jam {
	f.t.Helper()
	j, err := f.jams.Get(f.ctx, jamId)
	require.NoError(f.t, err)
	return j
}

func (f *fixture) memberFlags(jamId string) map[string]model.RoleFlag {
	f.t.Helper()
	var members []model.Membership
	require.NoError(f.t, f.db.DB().Where("jam_id = ?", jamId).Find(&members).Error)
	out := make(map[string]model.RoleFlag, len(members))
	for _, m := range members {
		out[m.UserId] = m.RoleFlag
	}
	return out
}

func (f *fixture) countResults(jamId string) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.DB().Model(&model.EvaluationResult{}).Where("jam_id = ?", jamId).Count(&n).Error)
	return n
}

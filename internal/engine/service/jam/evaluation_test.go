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
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endedJam 创建一个 B、C、D 占满并已结束的 jam
func (f *fixture) endedJam() string {
	f.t.Helper()
	jamId, slots := f.create("A", "vocal", "guitar", "drums")
	for i, u := range []string{"B", "C", "D"} {
		require.NoError(f.t, f.join(jamId, slots[i], u))
	}
	require.NoError(f.t, f.svc.Confirm(f.ctx, jamId, "A"))
	require.NoError(f.t, f.svc.End(f.ctx, jamId, "A"))
	f.events.reset()
	return jamId
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []model.EvaluationInput
		want    []string
		wantErr bool
	}{
		{
			name:   "self evaluation dropped",
			inputs: []model.EvaluationInput{{TargetUserId: "B", Score: 3}, {TargetUserId: "C", Score: 4}},
			want:   []string{"C"},
		},
		{
			name:   "empty input",
			inputs: nil,
			want:   []string{},
		},
		{
			name:    "duplicate target",
			inputs:  []model.EvaluationInput{{TargetUserId: "C", Score: 1}, {TargetUserId: "C", Score: 2}},
			wantErr: true,
		},
		{
			name:    "empty target",
			inputs:  []model.EvaluationInput{{TargetUserId: "", Score: 1}},
			wantErr: true,
		},
		{
			name:    "nan score",
			inputs:  []model.EvaluationInput{{TargetUserId: "C", Score: math.NaN()}},
			wantErr: true,
		},
		{
			name:    "infinite score",
			inputs:  []model.EvaluationInput{{TargetUserId: "C", Score: math.Inf(1)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize("B", tt.inputs)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			targets := make([]string, 0, len(got))
			for _, in := range got {
				targets = append(targets, in.TargetUserId)
			}
			assert.Equal(t, tt.want, targets)
		})
	}
}

func TestSubmitEvaluation_Errors(t *testing.T) {
	f := newFixture(t)
	jamId := f.endedJam()

	tests := []struct {
		name      string
		jamId     string
		evaluator string
		inputs    []model.EvaluationInput
		want      error
	}{
		{
			name:      "unknown jam",
			jamId:     "missing",
			evaluator: "B",
			want:      ErrNotFound,
		},
		{
			name:      "unknown target",
			jamId:     jamId,
			evaluator: "B",
			inputs:    []model.EvaluationInput{{TargetUserId: "Z", Score: 3}},
			want:      ErrInvalidArgument,
		},
		{
			name:      "duplicate target",
			jamId:     jamId,
			evaluator: "B",
			inputs:    []model.EvaluationInput{{TargetUserId: "C", Score: 3}, {TargetUserId: "C", Score: 1}},
			want:      ErrInvalidArgument,
		},
		{
			name:      "evaluator without task",
			jamId:     jamId,
			evaluator: "E",
			inputs:    []model.EvaluationInput{{TargetUserId: "C", Score: 3}},
			want:      ErrAlreadySubmitted,
		},
		{
			name:      "missing evaluator",
			jamId:     jamId,
			evaluator: "",
			want:      ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.SubmitEvaluation(f.ctx, tt.jamId, tt.evaluator, tt.inputs)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// 失败的提交不改变任务状态，也不写结果
	assert.Zero(t, f.countResults(jamId))
	tasks, err := f.evals.ListTasksByJam(f.ctx, jamId)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, model.TaskPending, task.Status)
	}
	assert.Empty(t, f.events.names())
}

func TestSubmitEvaluation_AtMostOnce(t *testing.T) {
	f := newFixture(t)
	jamId := f.endedJam()

	inputs := []model.EvaluationInput{{TargetUserId: "B", Score: 2}, {TargetUserId: "D", Score: 4}}
	require.NoError(t, f.svc.SubmitEvaluation(f.ctx, jamId, "C", inputs))
	assert.ErrorIs(t, f.svc.SubmitEvaluation(f.ctx, jamId, "C", inputs), ErrAlreadySubmitted)
	assert.Equal(t, int64(2), f.countResults(jamId))
	assert.Len(t, f.events.ofType(EventEvaluationSubmitted), 1)
}

func TestSubmitEvaluation_SelfOnlyCompletesTask(t *testing.T) {
	f := newFixture(t)
	jamId := f.endedJam()

	require.NoError(t, f.svc.SubmitEvaluation(f.ctx, jamId, "D", []model.EvaluationInput{
		{TargetUserId: "D", Score: 5},
	}))
	assert.Zero(t, f.countResults(jamId))

	pending, err := f.svc.GetPendingEvaluation(f.ctx, "D")
	require.NoError(t, err)
	assert.Nil(t, pending)

	evs := f.events.ofType(EventEvaluationSubmitted)
	require.Len(t, evs, 1)
	assert.Empty(t, evs[0].(EvaluationSubmitted).Targets)
}

func TestSubmitEvaluation_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	jamId := f.endedJam()

	const workers = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.SubmitEvaluation(f.ctx, jamId, "B", []model.EvaluationInput{
				{TargetUserId: "C", Score: 3},
				{TargetUserId: "D", Score: 4},
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, ErrAlreadySubmitted):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())
	assert.Equal(t, int64(2), f.countResults(jamId))
}

func TestGetPendingEvaluation_NewestFirst(t *testing.T) {
	f := newFixture(t)
	first := f.endedJam()
	second := f.endedJam()

	pending, err := f.svc.GetPendingEvaluation(f.ctx, "B")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, second, pending.JamId)
	assert.Equal(t, "jam session", pending.Title)

	require.NoError(t, f.svc.SubmitEvaluation(f.ctx, second, "B", nil))
	pending, err = f.svc.GetPendingEvaluation(f.ctx, "B")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, first, pending.JamId)

	pending, err = f.svc.GetPendingEvaluation(f.ctx, "E")
	require.NoError(t, err)
	assert.Nil(t, pending)

	_, err = f.svc.GetPendingEvaluation(f.ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDisbandCreatesNoTasks(t *testing.T) {
	f := newFixture(t)
	jamId, slots := f.create("A", "vocal")
	require.NoError(t, f.join(jamId, slots[0], "B"))
	require.NoError(t, f.svc.Confirm(f.ctx, jamId, "A"))
	require.NoError(t, f.svc.Disband(f.ctx, jamId, "A"))

	tasks, err := f.evals.ListTasksByJam(f.ctx, jamId)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRemindPending(t *testing.T) {
	f := newFixture(t)
	jamId := f.endedJam()

	n, err := f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.svc.SubmitEvaluation(f.ctx, jamId, "B", nil))
	f.events.reset()
	f.clock.Advance(48 * time.Hour)

	n, err = f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reminders := f.events.ofType(EventEvaluationReminder)
	require.Len(t, reminders, 2)
	evaluators := make([]string, 0, 2)
	for _, ev := range reminders {
		r := ev.(EvaluationReminder)
		assert.Equal(t, jamId, r.JamId)
		evaluators = append(evaluators, r.EvaluatorId)
	}
	assert.ElementsMatch(t, []string{"C", "D"}, evaluators)

	n, err = f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "already reminded in this period")
}

func TestRemindPending_UsesServiceClock(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(-365 * 24 * time.Hour)
	f.endedJam()

	f.clock.Advance(48 * time.Hour)
	n, err := f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRemindPending_PagesAndRepeatsPerPeriod(t *testing.T) {
	f := newFixture(t)
	f.svc.remindBatch = 2
	first := f.endedJam()
	second := f.endedJam()
	f.clock.Advance(48 * time.Hour)

	n, err := f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	reminders := f.events.ofType(EventEvaluationReminder)
	require.Len(t, reminders, 6)
	perJam := map[string]int{}
	for _, ev := range reminders {
		perJam[ev.(EvaluationReminder).JamId]++
	}
	assert.Equal(t, map[string]int{first: 3, second: 3}, perJam)

	f.events.reset()
	n, err = f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.events.ofType(EventEvaluationReminder))

	require.NoError(t, f.svc.SubmitEvaluation(f.ctx, first, "B", nil))
	f.clock.Advance(25 * time.Hour)
	n, err = f.svc.RemindPending(f.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}


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
	"math"
	"slices"
	"time"

	basemodel "github.com/go-arcade/ensemble/internal/engine/model"
	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
)

// coordinator 负责 jam 结束后的互评流程
type coordinator struct {
	evals repojam.IEvaluationRepository
	slots repojam.ISlotRepository
	users directory.UserDirectory
	now   func() time.Time
}

// generateTasks 为当前每个不同的占用者创建一条 PENDING 任务，只由 ENDED 迁移调用
func (c *coordinator) generateTasks(ctx context.Context, jamId string) ([]string, error) {
	slots, err := c.slots.ListByJam(ctx, jamId)
	if err != nil {
		return nil, infra("list slots", err)
	}

	evaluators := occupants(slots)
	tasks := make([]model.EvaluationTask, 0, len(evaluators))
	at := c.now()
	for _, uid := range evaluators {
		tasks = append(tasks, model.EvaluationTask{
			// 提醒的截止时间取自同一时钟
			BaseModel:       basemodel.BaseModel{CreatedAt: at, UpdatedAt: at},
			JamId:           jamId,
			EvaluatorUserId: uid,
			Status:          model.TaskPending,
		})
	}
	if err := c.evals.CreateTasks(ctx, tasks); err != nil {
		return nil, infra("create evaluation tasks", err)
	}
	return evaluators, nil
}

// normalize 去掉对自己的评价，拒绝重复目标和非法分数
func normalize(evaluator string, inputs []model.EvaluationInput) ([]model.EvaluationInput, error) {
	seen := make(map[string]struct{}, len(inputs))
	out := make([]model.EvaluationInput, 0, len(inputs))
	for _, in := range inputs {
		if in.TargetUserId == "" {
			return nil, fmt.Errorf("empty target: %w", ErrInvalidArgument)
		}
		if _, dup := seen[in.TargetUserId]; dup {
			return nil, fmt.Errorf("duplicate target %s: %w", in.TargetUserId, ErrInvalidArgument)
		}
		seen[in.TargetUserId] = struct{}{}
		if math.IsNaN(in.Score) || math.IsInf(in.Score, 0) {
			return nil, fmt.Errorf("score for %s is not a number: %w", in.TargetUserId, ErrInvalidArgument)
		}
		if in.TargetUserId == evaluator {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// submit 以任务状态做 CAS，成功后写入评价结果
func (c *coordinator) submit(ctx context.Context, jamId, evaluator string, inputs []model.EvaluationInput) ([]string, error) {
	targets := make([]string, 0, len(inputs))
	for _, in := range inputs {
		targets = append(targets, in.TargetUserId)
	}
	if len(targets) > 0 {
		exists, err := c.users.Exists(ctx, targets)
		if err != nil {
			return nil, infra("check targets", err)
		}
		for _, t := range targets {
			if !exists[t] {
				return nil, fmt.Errorf("unknown target %s: %w", t, ErrInvalidArgument)
			}
		}
	}

	done, err := c.evals.MarkDone(ctx, jamId, evaluator)
	if err != nil {
		return nil, infra("complete evaluation task", err)
	}
	if !done {
		return nil, fmt.Errorf("evaluator %s on jam %s: %w", evaluator, jamId, ErrAlreadySubmitted)
	}

	results := make([]model.EvaluationResult, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, model.EvaluationResult{
			JamId:           jamId,
			EvaluatorUserId: evaluator,
			TargetUserId:    in.TargetUserId,
			Score:           in.Score,
			MoodMaker:       in.MoodMaker,
		})
	}
	if err := c.evals.CreateResults(ctx, results); err != nil {
		return nil, infra("write evaluation results", err)
	}
	return targets, nil
}

// occupants 按乐器位顺序返回去重后的占用者
func occupants(slots []model.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if uid, ok := s.Occupant(); ok && !slices.Contains(out, uid) {
			out = append(out, uid)
		}
	}
	return out
}

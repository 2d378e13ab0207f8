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

// EvaluationTask jam 结束时为每个演奏者生成一条，只会从 PENDING 变为 DONE
type EvaluationTask struct {
	model.BaseModel
	JamId           string     `gorm:"column:jam_id;size:64;uniqueIndex:uk_eval_task" json:"jamId"`
	EvaluatorUserId string     `gorm:"column:evaluator_user_id;size:64;uniqueIndex:uk_eval_task;index:idx_eval_task_user" json:"evaluatorUserId"`
	Status          TaskStatus `gorm:"column:status;size:16" json:"status"`
	RemindedAt      *time.Time `gorm:"column:reminded_at;index:idx_eval_task_remind" json:"remindedAt,omitempty"`
}

func (EvaluationTask) TableName() string {
	return "t_evaluation_task"
}

// EvaluationResult 评价结果，写入后不可修改
type EvaluationResult struct {
	model.BaseModel
	JamId           string  `gorm:"column:jam_id;size:64;uniqueIndex:uk_eval_result" json:"jamId"`
	EvaluatorUserId string  `gorm:"column:evaluator_user_id;size:64;uniqueIndex:uk_eval_result" json:"evaluatorUserId"`
	TargetUserId    string  `gorm:"column:target_user_id;size:64;uniqueIndex:uk_eval_result" json:"targetUserId"`
	Score           float64 `gorm:"column:score" json:"score"`
	MoodMaker       bool    `gorm:"column:mood_maker" json:"moodMaker"`
}

func (EvaluationResult) TableName() string {
	return "t_evaluation_result"
}

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
	"time"

	"github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/go-arcade/ensemble/pkg/database"
	"gorm.io/gorm/clause"
)

type IEvaluationRepository interface {
	CreateTasks(ctx context.Context, tasks []jam.EvaluationTask) error
	MarkDone(ctx context.Context, jamId, evaluatorUserId string) (bool, error)
	CreateResults(ctx context.Context, results []jam.EvaluationResult) error
	ListTasksByJam(ctx context.Context, jamId string) ([]jam.EvaluationTask, error)
	ListPending(ctx context.Context, evaluatorUserId string) ([]jam.EvaluationTask, error)
	ListRemindable(ctx context.Context, cutoff time.Time, afterId uint64, limit int) ([]jam.EvaluationTask, error)
	MarkReminded(ctx context.Context, ids []uint64, at time.Time) error
	ListResults(ctx context.Context, jamId, evaluatorUserId string) ([]jam.EvaluationResult, error)
}

type EvaluationRepo struct {
	db database.DB
}

func NewEvaluationRepo(db database.DB) IEvaluationRepository {
	return &EvaluationRepo{db: db}
}

// CreateTasks 批量插入评价任务，已存在的 (jam, evaluator) 跳过
func (r *EvaluationRepo) CreateTasks(ctx context.Context, tasks []jam.EvaluationTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.Conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jam_id"}, {Name: "evaluator_user_id"}},
			DoNothing: true,
		}).
		Create(&tasks).Error
}

// MarkDone PENDING -> DONE，返回是否由本次调用完成
func (r *EvaluationRepo) MarkDone(ctx context.Context, jamId, evaluatorUserId string) (bool, error) {
	res := r.db.Conn(ctx).Model(&jam.EvaluationTask{}).
		Where("jam_id = ? AND evaluator_user_id = ? AND status = ?", jamId, evaluatorUserId, jam.TaskPending).
		Update("status", jam.TaskDone)
	return res.RowsAffected > 0, res.Error
}

// CreateResults 批量写入评价结果
func (r *EvaluationRepo) CreateResults(ctx context.Context, results []jam.EvaluationResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.Conn(ctx).Create(&results).Error
}

// ListTasksByJam 列出 jam 的评价任务
func (r *EvaluationRepo) ListTasksByJam(ctx context.Context, jamId string) ([]jam.EvaluationTask, error) {
	var tasks []jam.EvaluationTask
	err := r.db.Conn(ctx).Where("jam_id = ?", jamId).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// ListPending 用户所有待评价任务，最新的在前
func (r *EvaluationRepo) ListPending(ctx context.Context, evaluatorUserId string) ([]jam.EvaluationTask, error) {
	var tasks []jam.EvaluationTask
	err := database.ReadConn(ctx, r.db).
		Where("evaluator_user_id = ? AND status = ?", evaluatorUserId, jam.TaskPending).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListRemindable 按 id 翻页列出需要提醒的待评价任务：创建早于 cutoff，且从未提醒或上次提醒早于 cutoff
func (r *EvaluationRepo) ListRemindable(ctx context.Context, cutoff time.Time, afterId uint64, limit int) ([]jam.EvaluationTask, error) {
	var tasks []jam.EvaluationTask
	q := r.db.Conn(ctx).
		Where("status = ? AND created_at < ? AND id > ?", jam.TaskPending, cutoff, afterId).
		Where("reminded_at IS NULL OR reminded_at < ?", cutoff).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

// MarkReminded 记录提醒时间，同一任务在下一个提醒周期前不会再被选中
func (r *EvaluationRepo) MarkReminded(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Conn(ctx).
		Model(&jam.EvaluationTask{}).
		Where("id IN ? AND status = ?", ids, jam.TaskPending).
		Update("reminded_at", at).Error
}

// ListResults 列出某评价者在 jam 中提交的结果
func (r *EvaluationRepo) ListResults(ctx context.Context, jamId, evaluatorUserId string) ([]jam.EvaluationResult, error) {
	var results []jam.EvaluationResult
	err := r.db.Conn(ctx).
		Where("jam_id = ? AND evaluator_user_id = ?", jamId, evaluatorUserId).
		Order("id ASC").
		Find(&results).Error
	return results, err
}

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

package bootstrap

import (
	"context"
	"time"

	"github.com/go-arcade/ensemble/internal/engine/conf"
	"github.com/go-arcade/ensemble/pkg/cron"
	"github.com/go-arcade/ensemble/pkg/log"
)

const (
	JobRolePriorityRefresh = "role-priority-refresh"
	JobEvaluationReminder  = "evaluation-reminder"

	jobTimeout = time.Minute
)

type priorityRefresher interface {
	Refresh(ctx context.Context) error
}

type evaluationReminder interface {
	RemindPending(ctx context.Context, after time.Duration) (int, error)
}

// RegisterJobs 注册后台任务，spec 为空的任务不注册
func RegisterJobs(c *cron.Cron, cfg conf.CronConf, priorities priorityRefresher, reminder evaluationReminder) error {
	if cfg.RolePriorityRefreshSpec != "" {
		err := c.AddFunc(cfg.RolePriorityRefreshSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := priorities.Refresh(ctx); err != nil {
				log.Errorw("refresh role priorities failed", "error", err)
			}
		}, JobRolePriorityRefresh)
		if err != nil {
			return err
		}
	}

	if cfg.ReminderSpec != "" {
		after := cfg.ReminderAfter
		if after <= 0 {
			after = 24 * time.Hour
		}
		err := c.AddFunc(cfg.ReminderSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			n, err := reminder.RemindPending(ctx, after)
			if err != nil {
				log.Errorw("send evaluation reminders failed", "error", err)
				return
			}
			log.Debugw("evaluation reminders", "sent", n, "after", after)
		}, JobEvaluationReminder)
		if err != nil {
			return err
		}
	}
	return nil
}

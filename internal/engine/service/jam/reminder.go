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

	"github.com/go-arcade/ensemble/pkg/log"
)

const reminderBatch = 500

// RemindPending publishes an EvaluationReminder for every task that has been
// pending longer than after and was not reminded within the last after.
// Reminded tasks are stamped so the next run skips them until after elapses
// again. It returns the number of reminders sent.
func (s *Service) RemindPending(ctx context.Context, after time.Duration) (n int, err error) {
	ctx, done := s.observe(ctx, "remind_pending")
	defer done(&err)

	now := s.now()
	cutoff := now.Add(-after)
	var lastId uint64
	for {
		tasks, err := s.evals.ListRemindable(ctx, cutoff, lastId, s.remindBatch)
		if err != nil {
			log.Errorw("list stale evaluation tasks failed", "error", err)
			return n, infra("list stale evaluation tasks", err)
		}
		if len(tasks) == 0 {
			break
		}

		ids := make([]uint64, 0, len(tasks))
		for _, t := range tasks {
			ids = append(ids, t.ID)
		}
		if err := s.evals.MarkReminded(ctx, ids, now); err != nil {
			log.Errorw("stamp evaluation reminders failed", "error", err)
			return n, infra("stamp evaluation reminders", err)
		}
		if s.bus != nil {
			for _, t := range tasks {
				s.bus.Publish(EvaluationReminder{
					JamId:        t.JamId,
					EvaluatorId:  t.EvaluatorUserId,
					PendingSince: t.CreatedAt,
				})
			}
		}
		n += len(tasks)
		lastId = ids[len(ids)-1]
		if s.remindBatch <= 0 || len(tasks) < s.remindBatch {
			break
		}
	}

	if n > 0 {
		log.Infow("evaluation reminders sent", "count", n)
	}
	return n, nil
}

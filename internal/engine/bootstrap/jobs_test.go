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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-arcade/ensemble/internal/engine/conf"
	"github.com/go-arcade/ensemble/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls.Add(1)
	return f.err
}

type fakeReminder struct {
	calls atomic.Int32
	after time.Duration
}

func (f *fakeReminder) RemindPending(_ context.Context, after time.Duration) (int, error) {
	f.calls.Add(1)
	f.after = after
	return 2, nil
}

func TestRegisterJobs(t *testing.T) {
	tests := []struct {
		name      string
		cfg       conf.CronConf
		wantJobs  []string
		wantAfter time.Duration
		wantErr   bool
	}{
		{
			name: "both jobs",
			cfg: conf.CronConf{
				RolePriorityRefreshSpec: "@every 5m",
				ReminderSpec:            "0 0 * * * *",
				ReminderAfter:           48 * time.Hour,
			},
			wantJobs:  []string{JobRolePriorityRefresh, JobEvaluationReminder},
			wantAfter: 48 * time.Hour,
		},
		{
			name:      "reminder only with default delay",
			cfg:       conf.CronConf{ReminderSpec: "@hourly"},
			wantJobs:  []string{JobEvaluationReminder},
			wantAfter: 24 * time.Hour,
		},
		{
			name:     "nothing configured",
			cfg:      conf.CronConf{},
			wantJobs: nil,
		},
		{
			name:    "invalid spec",
			cfg:     conf.CronConf{RolePriorityRefreshSpec: "every now and then"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cron.New()
			refresher, reminder := &fakeRefresher{}, &fakeReminder{}

			err := RegisterJobs(c, tt.cfg, refresher, reminder)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var names []string
			for _, e := range c.Entries() {
				names = append(names, e.Name)
			}
			assert.ElementsMatch(t, tt.wantJobs, names)

			for _, name := range tt.wantJobs {
				require.NoError(t, c.RunNow(name))
			}
			if len(tt.wantJobs) == 2 {
				assert.Equal(t, int32(1), refresher.calls.Load())
			}
			if tt.wantAfter > 0 {
				assert.Equal(t, int32(1), reminder.calls.Load())
				assert.Equal(t, tt.wantAfter, reminder.after)
			}
		})
	}
}

func TestRegisterJobs_FailingRefreshIsContained(t *testing.T) {
	c := cron.New()
	refresher := &fakeRefresher{err: errors.New("db down")}

	require.NoError(t, RegisterJobs(c, conf.CronConf{RolePriorityRefreshSpec: "@every 1m"}, refresher, &fakeReminder{}))
	assert.NoError(t, c.RunNow(JobRolePriorityRefresh))
	assert.Equal(t, int32(1), refresher.calls.Load())
}

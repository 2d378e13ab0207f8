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
	"testing"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/go-arcade/ensemble/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleTable(t *testing.T) {
	m := NewLifecycle()
	ctx := context.Background()

	assert.Equal(t, model.StatusForming, m.Initial())

	tests := []struct {
		from model.LifecycleStatus
		ev   statemachine.Event
		to   model.LifecycleStatus
		ok   bool
	}{
		{model.StatusForming, EventConfirm, model.StatusConfirmed, true},
		{model.StatusForming, EventDisband, model.StatusDisbanded, true},
		{model.StatusForming, EventEnd, "", false},
		{model.StatusConfirmed, EventEnd, model.StatusEnded, true},
		{model.StatusConfirmed, EventDisband, model.StatusDisbanded, true},
		{model.StatusConfirmed, EventConfirm, "", false},
		{model.StatusEnded, EventDisband, "", false},
		{model.StatusEnded, EventConfirm, "", false},
		{model.StatusDisbanded, EventConfirm, "", false},
		{model.StatusDisbanded, EventEnd, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			to, err := m.Fire(ctx, tt.from, tt.ev)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, to)
		})
	}

	assert.True(t, m.IsTerminal(model.StatusEnded))
	assert.True(t, m.IsTerminal(model.StatusDisbanded))
	assert.Empty(t, m.ValidNextStates(model.StatusEnded))
	assert.ElementsMatch(t,
		[]model.LifecycleStatus{model.StatusConfirmed, model.StatusDisbanded},
		m.ValidNextStates(model.StatusForming))
}

func TestLifecycle_RejectsUnknownStatus(t *testing.T) {
	m := NewLifecycle()
	err := m.Transition(context.Background(), model.StatusForming, model.LifecycleStatus("PAUSED"), "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEnsureForming(t *testing.T) {
	tests := []struct {
		status model.LifecycleStatus
		want   error
	}{
		{model.StatusForming, nil},
		{model.StatusConfirmed, ErrJamLocked},
		{model.StatusEnded, ErrJamLocked},
		{model.StatusDisbanded, ErrJamLocked},
		{model.LifecycleStatus("???"), ErrJamLocked},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := ensureForming(&model.Jam{JamId: "j", Status: tt.status})
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

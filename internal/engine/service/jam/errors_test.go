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
	"testing"

	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestInfraError(t *testing.T) {
	driverErr := errors.New("connection reset")
	err := infra("occupy slot", driverErr)

	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.ErrorIs(t, err, driverErr)
	assert.Equal(t, "occupy slot failed: connection reset", err.Error())
	assert.NoError(t, infra("noop", nil))

	wrapped := fmt.Errorf("join failed: %w", err)
	var ie *InfraError
	assert.True(t, errors.As(wrapped, &ie))
	assert.Equal(t, "occupy slot", ie.Op)
}

func TestNotFullIsInvalidTransition(t *testing.T) {
	assert.ErrorIs(t, ErrNotFull, ErrInvalidTransition)
	assert.False(t, errors.Is(ErrInvalidTransition, ErrNotFull))
}

func TestNotFoundOr(t *testing.T) {
	assert.ErrorIs(t, notFoundOr("get jam", "jam x", gorm.ErrRecordNotFound), ErrNotFound)

	err := notFoundOr("get jam", "jam x", errors.New("boom"))
	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestStaleOr(t *testing.T) {
	assert.ErrorIs(t, staleOr("jam x", repojam.ErrStaleVersion), ErrConflict)
	assert.ErrorIs(t, staleOr("jam x", errors.New("boom")), ErrInfrastructure)
}

func TestWrapTx(t *testing.T) {
	assert.NoError(t, wrapTx("op", nil))
	assert.Same(t, ErrJamLocked, wrapTx("op", ErrJamLocked))
	assert.ErrorIs(t, wrapTx("op", errors.New("commit failed")), ErrInfrastructure)
	assert.ErrorIs(t, wrapTx("op", context.Canceled), context.Canceled)
	assert.False(t, errors.Is(wrapTx("op", context.Canceled), ErrInfrastructure))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("x: %w", ErrNotFound), "not_found"},
		{ErrPermissionDenied, "permission_denied"},
		{ErrNotFull, "not_full"},
		{ErrInvalidTransition, "invalid_transition"},
		{ErrSlotAlreadyOccupied, "slot_occupied"},
		{ErrJamLocked, "locked"},
		{ErrAlreadySubmitted, "already_submitted"},
		{ErrInvalidArgument, "invalid_argument"},
		{ErrConflict, "conflict"},
		{actor.ErrStopped, "stopped"},
		{context.DeadlineExceeded, "canceled"},
		{infra("x", errors.New("y")), "infrastructure"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.err), "%v", tt.err)
	}
}

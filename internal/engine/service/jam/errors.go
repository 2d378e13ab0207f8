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

	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/go-arcade/ensemble/pkg/statemachine"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidTransition = statemachine.ErrInvalidTransition
	// ErrNotFull 确认时仍有空闲乐器位
	ErrNotFull             = fmt.Errorf("jam has vacant slots: %w", ErrInvalidTransition)
	ErrSlotAlreadyOccupied = errors.New("slot already occupied")
	ErrJamLocked           = errors.New("jam is locked")
	ErrAlreadySubmitted    = errors.New("evaluation already submitted")
	ErrInvalidArgument     = errors.New("invalid argument")
	// ErrConflict jam 被并发修改，调用方可以重试
	ErrConflict       = errors.New("concurrent modification")
	ErrInfrastructure = errors.New("infrastructure failure")
)

// InfraError wraps a storage failure. The operation it belongs to has been
// rolled back.
type InfraError struct {
	Op  string
	Err error
}

func (e *InfraError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *InfraError) Is(target error) bool {
	return target == ErrInfrastructure
}

func (e *InfraError) Unwrap() error {
	return e.Err
}

func infra(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InfraError{Op: op, Err: err}
}

// notFoundOr 把 gorm 的 ErrRecordNotFound 转为 ErrNotFound，其余视为存储故障
func notFoundOr(op, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return infra(op, err)
}

// classify 返回用于 metrics 标签的错误分类
func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrNotFull):
		return "not_full"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrSlotAlreadyOccupied):
		return "slot_occupied"
	case errors.Is(err, ErrJamLocked):
		return "locked"
	case errors.Is(err, ErrAlreadySubmitted):
		return "already_submitted"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, actor.ErrStopped):
		return "stopped"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrInfrastructure):
		return "infrastructure"
	}
	return "error"
}

// wrapTx 事务返回的未分类错误（如提交失败）归为存储故障
func wrapTx(op string, err error) error {
	if classify(err) != "error" {
		return err
	}
	return infra(op, err)
}

// IsRetryable reports whether retrying the same call may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

func staleOr(op string, err error) error {
	if errors.Is(err, repojam.ErrStaleVersion) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return infra(op, err)
}

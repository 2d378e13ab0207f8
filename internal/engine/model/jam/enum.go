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
	"database/sql/driver"
	"fmt"
)

// LifecycleStatus jam 生命周期状态
type LifecycleStatus string

const (
	StatusForming   LifecycleStatus = "FORMING"
	StatusConfirmed LifecycleStatus = "CONFIRMED"
	StatusEnded     LifecycleStatus = "ENDED"
	StatusDisbanded LifecycleStatus = "DISBANDED"
)

func (s LifecycleStatus) IsValid() bool {
	switch s {
	case StatusForming, StatusConfirmed, StatusEnded, StatusDisbanded:
		return true
	}
	return false
}

// IsTerminal ENDED 与 DISBANDED 为终态
func (s LifecycleStatus) IsTerminal() bool {
	switch s {
	case StatusEnded, StatusDisbanded:
		return true
	case StatusForming, StatusConfirmed:
		return false
	}
	return false
}

func (s LifecycleStatus) String() string { return string(s) }

func (s LifecycleStatus) Value() (driver.Value, error) {
	return enumValue(s, s.IsValid())
}

func (s *LifecycleStatus) Scan(src any) error {
	return scanEnum(src, s, func(v LifecycleStatus) bool { return v.IsValid() })
}

// RoleFlag 成员角色，只由 leader 计算写入
type RoleFlag string

const (
	RoleLeader RoleFlag = "LEADER"
	RoleNormal RoleFlag = "NORMAL"
)

func (f RoleFlag) IsValid() bool {
	switch f {
	case RoleLeader, RoleNormal:
		return true
	}
	return false
}

func (f RoleFlag) String() string { return string(f) }

func (f RoleFlag) Value() (driver.Value, error) {
	return enumValue(f, f.IsValid())
}

func (f *RoleFlag) Scan(src any) error {
	return scanEnum(src, f, func(v RoleFlag) bool { return v.IsValid() })
}

// TaskStatus 评价任务状态
type TaskStatus string

const (
	TaskPending TaskStatus = "PENDING"
	TaskDone    TaskStatus = "DONE"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskDone:
		return true
	}
	return false
}

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) Value() (driver.Value, error) {
	return enumValue(s, s.IsValid())
}

func (s *TaskStatus) Scan(src any) error {
	return scanEnum(src, s, func(v TaskStatus) bool { return v.IsValid() })
}

func enumValue[T ~string](v T, valid bool) (driver.Value, error) {
	if !valid {
		return nil, fmt.Errorf("invalid %T value %q", v, string(v))
	}
	return string(v), nil
}

func scanEnum[T ~string](src any, dst *T, valid func(T) bool) error {
	var v T
	switch s := src.(type) {
	case string:
		v = T(s)
	case []byte:
		v = T(s)
	case nil:
		return fmt.Errorf("scan %T: null value", v)
	default:
		return fmt.Errorf("scan %T: unsupported type %T", v, src)
	}
	if !valid(v) {
		return fmt.Errorf("scan %T: unknown value %q", v, string(v))
	}
	*dst = v
	return nil
}

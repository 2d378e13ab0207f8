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
	"strings"
)

const (
	actorSystem     = "system"
	actorUserPrefix = "user:"
)

// Actor 记录一次写入的发起者：某个用户，或者引擎自身（如 leader 重算）
type Actor struct {
	system bool
	userID string
}

// System is the engine acting on its own behalf.
var System = Actor{system: true}

// User returns the actor for a user-initiated write.
func User(userID string) Actor {
	return Actor{userID: userID}
}

func (a Actor) IsSystem() bool { return a.system }

// UserID returns the user id and false for the system actor.
func (a Actor) UserID() (string, bool) {
	if a.system {
		return "", false
	}
	return a.userID, true
}

func (a Actor) String() string {
	if a.system {
		return actorSystem
	}
	return actorUserPrefix + a.userID
}

// ParseActor is the inverse of Actor.String.
func ParseActor(s string) (Actor, error) {
	switch {
	case s == actorSystem:
		return System, nil
	case strings.HasPrefix(s, actorUserPrefix) && len(s) > len(actorUserPrefix):
		return User(strings.TrimPrefix(s, actorUserPrefix)), nil
	}
	return Actor{}, fmt.Errorf("invalid actor %q", s)
}

func (a Actor) Value() (driver.Value, error) {
	if !a.system && a.userID == "" {
		return nil, fmt.Errorf("empty actor")
	}
	return a.String(), nil
}

func (a *Actor) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan actor: unsupported type %T", src)
	}
	parsed, err := ParseActor(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Actor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Actor) UnmarshalText(b []byte) error {
	parsed, err := ParseActor(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

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

package directory

import (
	"context"
	"math"
)

// UnknownRank 未登记的乐器角色排在最后
const UnknownRank = math.MaxInt32

// UserDirectory resolves user ids for read-side projections and
// referential checks.
type UserDirectory interface {
	DisplayNames(ctx context.Context, userIds []string) (map[string]string, error)
	Exists(ctx context.Context, userIds []string) (map[string]bool, error)
}

// RolePriorityTable maps a role code to its rank, lower is higher priority.
type RolePriorityTable interface {
	Rank(roleCode string) int
}

// ClanRoles looks up a user's role rank inside a clan. ok is false when the
// user is not a member of the clan.
type ClanRoles interface {
	Rank(ctx context.Context, clanId, userId string) (rank int, ok bool, err error)
}

// IsElevated 公会中 rank 1、2 的角色可以管理 jam
func IsElevated(rank int) bool {
	return rank == 1 || rank == 2
}

// RankMap is a fixed RolePriorityTable.
type RankMap map[string]int

func (m RankMap) Rank(roleCode string) int {
	if r, ok := m[roleCode]; ok {
		return r
	}
	return UnknownRank
}

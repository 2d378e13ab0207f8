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
	"github.com/go-arcade/ensemble/internal/engine/conf"
	repodir "github.com/go-arcade/ensemble/internal/engine/repo/directory"
	"github.com/go-arcade/ensemble/pkg/cache"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewRolePriorityService,
	ProvideUserDirectoryService,
	ProvideClanRoleService,
	wire.Bind(new(RolePriorityTable), new(*RolePriorityService)),
	wire.Bind(new(UserDirectory), new(*UserDirectoryService)),
	wire.Bind(new(ClanRoles), new(*ClanRoleService)),
)

func ProvideUserDirectoryService(repo repodir.IUserRepository, c cache.ICache, engine conf.EngineConf) *UserDirectoryService {
	return NewUserDirectoryService(repo, c, engine.DirectoryTTL)
}

func ProvideClanRoleService(repo repodir.IClanMemberRepository, c cache.ICache, engine conf.EngineConf) *ClanRoleService {
	return NewClanRoleService(repo, c, engine.DirectoryTTL)
}

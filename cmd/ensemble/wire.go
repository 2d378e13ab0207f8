//go:build wireinject
// +build wireinject

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

package main

import (
	"github.com/go-arcade/ensemble/internal/engine/bootstrap"
	"github.com/go-arcade/ensemble/internal/engine/conf"
	repodir "github.com/go-arcade/ensemble/internal/engine/repo/directory"
	repojam "github.com/go-arcade/ensemble/internal/engine/repo/jam"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	jamsvc "github.com/go-arcade/ensemble/internal/engine/service/jam"
	"github.com/go-arcade/ensemble/internal/pkg/notify"
	"github.com/go-arcade/ensemble/pkg/cache"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/google/wire"
)

func initApp(loader *conf.Loader) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		conf.ProviderSet,
		// 基础设施
		database.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		notify.ProviderSet,
		// 仓储层
		repojam.ProviderSet,
		repodir.ProviderSet,
		// 服务层
		directory.ProviderSet,
		jamsvc.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}

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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/ensemble/internal/engine/conf"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	jamsvc "github.com/go-arcade/ensemble/internal/engine/service/jam"
	"github.com/go-arcade/ensemble/internal/pkg/notify"
	"github.com/go-arcade/ensemble/pkg/cron"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/go-arcade/ensemble/pkg/trace"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Loader     *conf.Loader
	AppConf    *conf.AppConfig
	DB         database.DB
	Jams       *jamsvc.Service
	Priorities *directory.RolePriorityService
	Users      *directory.UserDirectoryService
	Clans      *directory.ClanRoleService
	Bus        *event.EventBus
	Relay      *notify.Relay
	Metrics    *metrics.Server
	Redis      *redis.Client
}

func NewApp(
	loader *conf.Loader,
	appConf *conf.AppConfig,
	db database.DB,
	jams *jamsvc.Service,
	priorities *directory.RolePriorityService,
	users *directory.UserDirectoryService,
	clans *directory.ClanRoleService,
	bus *event.EventBus,
	relay *notify.Relay,
	metricsServer *metrics.Server,
	redisClient *redis.Client,
) *App {
	return &App{
		Loader:     loader,
		AppConf:    appConf,
		DB:         db,
		Jams:       jams,
		Priorities: priorities,
		Users:      users,
		Clans:      clans,
		Bus:        bus,
		Relay:      relay,
		Metrics:    metricsServer,
		Redis:      redisClient,
	}
}

// InitAppFunc init app function type
type InitAppFunc func(loader *conf.Loader) (*App, func(), error)

// Bootstrap load config, init logger, then build App with wire
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	loader, err := conf.NewLoader(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := log.Init(&loader.Config().Log); err != nil {
		return nil, nil, err
	}

	app, cleanup, err := initApp(loader)
	if err != nil {
		return nil, nil, fmt.Errorf("init app failed: %w", err)
	}
	return app, cleanup, nil
}

// Prepare 加载角色优先级并挂载事件转发，命令行与 serve 共用
func (a *App) Prepare(ctx context.Context) {
	if a.Relay != nil {
		a.Relay.Attach(a.Bus)
	}
	if err := a.Priorities.Refresh(ctx); err != nil {
		// 表可能尚未迁移，保持空表，所有乐器按未知优先级处理
		log.Warnw("role priorities not loaded", "error", err)
	}
}

// Migrate 迁移所有已注册的表并写入默认乐器优先级
func (a *App) Migrate(ctx context.Context) error {
	if err := database.AutoMigrate(a.DB.DB()); err != nil {
		return err
	}
	if err := a.Priorities.Seed(ctx, directory.DefaultRolePriorities); err != nil {
		return err
	}
	log.Infow("migration finished", "models", len(database.GetRegisteredModels()))
	return nil
}

// Run start background components and wait for exit signal, then gracefully shutdown
func (a *App) Run(ctx context.Context) error {
	shutdownTrace, err := trace.Init(a.AppConf.Trace)
	if err != nil {
		return err
	}
	if err := a.Metrics.Start(); err != nil {
		return err
	}
	a.Prepare(ctx)
	a.Loader.Watch()

	scheduler := cron.New()
	if err := RegisterJobs(scheduler, a.AppConf.Cron, a.Priorities, a.Jams); err != nil {
		return err
	}
	scheduler.Start()
	log.Infow("ensemble engine started", "jobs", len(scheduler.Entries()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("received signal, shutting down gracefully", "signal", sig.String())
	case <-ctx.Done():
		log.Infow("context done, shutting down", "error", ctx.Err())
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Metrics.Stop(shutdownCtx); err != nil {
		log.Errorw("metrics server shutdown error", "error", err)
	}
	if err := shutdownTrace(shutdownCtx); err != nil {
		log.Errorw("tracer shutdown error", "error", err)
	}
	log.Info("server shutdown complete")
	return nil
}

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

package conf

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/go-arcade/ensemble/internal/pkg/notify"
	"github.com/go-arcade/ensemble/pkg/cache"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/go-arcade/ensemble/pkg/trace"
	"github.com/spf13/viper"
)

const envPrefix = "ENSEMBLE"

// EngineConf jam 引擎配置
type EngineConf struct {
	Actor actor.Conf `mapstructure:"actor"`
	// BcryptCost 私密 jam 密码的 bcrypt cost
	BcryptCost int `mapstructure:"bcryptCost"`
	// DirectoryTTL 用户名与公会角色缓存时间
	DirectoryTTL time.Duration `mapstructure:"directoryTTL"`
}

// CronConf 定时任务配置，spec 为空时不注册对应任务
type CronConf struct {
	RolePriorityRefreshSpec string        `mapstructure:"rolePriorityRefreshSpec"`
	ReminderSpec            string        `mapstructure:"reminderSpec"`
	ReminderAfter           time.Duration `mapstructure:"reminderAfter"`
}

type AppConfig struct {
	Log      log.Conf              `mapstructure:"log"`
	Database database.Database     `mapstructure:"database"`
	Redis    cache.Redis           `mapstructure:"redis"`
	Cache    cache.Conf            `mapstructure:"cache"`
	Engine   EngineConf            `mapstructure:"engine"`
	Notify   notify.Conf           `mapstructure:"notify"`
	Metrics  metrics.MetricsConfig `mapstructure:"metrics"`
	Trace    trace.Conf            `mapstructure:"trace"`
	Cron     CronConf              `mapstructure:"cron"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.path", "./logs")
	v.SetDefault("log.filename", "ensemble.log")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.keepHours", 7)
	v.SetDefault("log.rotateSize", 100)
	v.SetDefault("log.rotateNum", 10)

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.output", false)
	v.SetDefault("database.tracing", false)
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.sqlite.path", "ensemble.db")

	v.SetDefault("redis.mode", "single")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.dialTimeout", 5)
	v.SetDefault("redis.readTimeout", 3)
	v.SetDefault("redis.writeTimeout", 3)

	v.SetDefault("cache.local.maxBytes", 32*1024*1024)
	v.SetDefault("cache.localTTLRatio", 0.8)

	v.SetDefault("engine.actor.mailboxSize", 64)
	v.SetDefault("engine.actor.idleTimeout", time.Minute)
	v.SetDefault("engine.bcryptCost", 10)
	v.SetDefault("engine.directoryTTL", 5*time.Minute)

	v.SetDefault("notify.channel", notify.DefaultChannel)
	v.SetDefault("notify.maxAttempts", 3)
	v.SetDefault("notify.queueSize", 1024)

	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("trace.enabled", false)

	v.SetDefault("cron.rolePriorityRefreshSpec", "@every 5m")
	v.SetDefault("cron.reminderSpec", "0 0 * * * *")
	v.SetDefault("cron.reminderAfter", 24*time.Hour)
}

// Loader 负责读取配置文件并在文件变化时重新解析
type Loader struct {
	v     *viper.Viper
	mu    sync.RWMutex
	cfg   *AppConfig
	hooks []func(*AppConfig)
}

// NewLoader reads path (TOML). An empty path uses defaults and environment only.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path) //文件名
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	l := &Loader{v: v}
	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	log.Infow("config file loaded", "path", path)
	return l, nil
}

func (l *Loader) unmarshal() (*AppConfig, error) {
	var cfg AppConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	return &cfg, nil
}

// Config returns the latest parsed configuration.
func (l *Loader) Config() *AppConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// OnChange registers a hook run after every successful reload.
func (l *Loader) OnChange(fn func(*AppConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

// Watch enables hot reload of the configuration file; only settings that
// are read at use time (log level) take effect without a restart.
func (l *Loader) Watch() {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name, "op", e.Op.String())
		l.reload()
	})
	l.v.WatchConfig()
}

func (l *Loader) reload() {
	cfg, err := l.unmarshal()
	if err != nil {
		log.Errorw("reload configuration failed", "error", err)
		return
	}
	l.mu.Lock()
	l.cfg = cfg
	hooks := slices.Clone(l.hooks)
	l.mu.Unlock()

	log.SetLevel(cfg.Log.Level)
	for _, h := range hooks {
		h(cfg)
	}
}

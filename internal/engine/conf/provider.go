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
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/go-arcade/ensemble/internal/pkg/notify"
	"github.com/go-arcade/ensemble/pkg/cache"
	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/go-arcade/ensemble/pkg/trace"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideCacheConfig,
	ProvideEngineConfig,
	ProvideActorConfig,
	ProvideNotifyConfig,
	ProvideMetricsConfig,
	ProvideTraceConfig,
	ProvideCronConfig,
)

func ProvideConf(loader *Loader) *AppConfig {
	return loader.Config()
}

func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideCacheConfig(appConf *AppConfig) cache.Conf {
	return appConf.Cache
}

func ProvideEngineConfig(appConf *AppConfig) EngineConf {
	return appConf.Engine
}

func ProvideActorConfig(appConf *AppConfig) actor.Conf {
	return appConf.Engine.Actor
}

func ProvideNotifyConfig(appConf *AppConfig) notify.Conf {
	return appConf.Notify
}

func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	return appConf.Metrics
}

func ProvideTraceConfig(appConf *AppConfig) trace.Conf {
	return appConf.Trace
}

func ProvideCronConfig(appConf *AppConfig) CronConf {
	return appConf.Cron
}

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
	"github.com/go-arcade/ensemble/internal/engine/conf"
	"github.com/go-arcade/ensemble/internal/pkg/actor"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/go-arcade/ensemble/pkg/metrics"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(Deps), "*"),
	ProvideService,
	ProvideActorSystem,
	ProvideEventBus,
	wire.Bind(new(event.Publisher), new(*event.EventBus)),
)

func ProvideService(d Deps, engine conf.EngineConf) *Service {
	return NewService(d, WithBcryptCost(engine.BcryptCost))
}

// ProvideActorSystem 创建 jam actor 系统，存活数量上报到 metrics
func ProvideActorSystem(c actor.Conf, m *metrics.EngineMetrics) (*actor.ActorSystem, func()) {
	system := actor.NewActorSystem(c, actor.WithSizeObserver(m.SetActors))
	return system, system.StopAll
}

func ProvideEventBus() *event.EventBus {
	return event.NewEventBus()
}

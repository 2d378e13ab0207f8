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

package actor

import (
	"context"
	"time"

	"github.com/go-arcade/ensemble/pkg/safe"
)

type request struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// jamActor 单个 jam 的串行执行者，mailbox 中的请求按到达顺序逐个执行
type jamActor struct {
	jamID    string
	mailbox  chan request
	shutdown chan struct{}
	exited   chan struct{}

	// 以下字段由 ActorSystem.mu 保护
	pending  int
	lastUsed time.Time
}

func newJamActor(jamID string, mailbox int, now time.Time) *jamActor {
	a := &jamActor{
		jamID:    jamID,
		mailbox:  make(chan request, mailbox),
		shutdown: make(chan struct{}),
		exited:   make(chan struct{}),
		lastUsed: now,
	}
	go a.loop()
	return a
}

func (a *jamActor) loop() {
	defer close(a.exited)
	for {
		select {
		case req := <-a.mailbox:
			a.handle(req)
		case <-a.shutdown:
			// 排空已入队的请求，调用方仍在等待结果
			for {
				select {
				case req := <-a.mailbox:
					a.handle(req)
				default:
					return
				}
			}
		}
	}
}

func (a *jamActor) handle(req request) {
	if err := req.ctx.Err(); err != nil {
		req.done <- err
		return
	}
	var err error
	if perr := safe.Do(func() { err = req.fn(req.ctx) }); perr != nil {
		err = perr
	}
	req.done <- err
}

func (a *jamActor) Stop() {
	close(a.shutdown)
	<-a.exited
}

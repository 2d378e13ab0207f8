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
	"errors"
	"sync"
	"time"

	"github.com/go-arcade/ensemble/pkg/log"
)

// ErrStopped is returned by Do after StopAll.
var ErrStopped = errors.New("actor system stopped")

// Conf 控制 actor 的 mailbox 大小和空闲回收时间
type Conf struct {
	MailboxSize int           `mapstructure:"mailboxSize"`
	IdleTimeout time.Duration `mapstructure:"idleTimeout"`
}

func (c *Conf) SetDefaults() {
	if c.MailboxSize <= 0 {
		c.MailboxSize = 64
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = time.Minute
	}
}

type Option func(*ActorSystem)

// WithSizeObserver is called with the live actor count whenever it changes.
func WithSizeObserver(fn func(n int)) Option {
	return func(s *ActorSystem) { s.onSize = fn }
}

// ActorSystem serializes work per jam id: calls to Do for the same id run
// one at a time in arrival order, calls for different ids run in parallel.
type ActorSystem struct {
	conf   Conf
	now    func() time.Time
	onSize func(n int)

	mu      sync.Mutex
	actors  map[string]*jamActor
	stopped bool

	stopReaper chan struct{}
	reaperDone chan struct{}
}

func NewActorSystem(conf Conf, opts ...Option) *ActorSystem {
	conf.SetDefaults()
	s := &ActorSystem{
		conf:       conf,
		now:        time.Now,
		actors:     make(map[string]*jamActor),
		stopReaper: make(chan struct{}),
		reaperDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.reapLoop()
	return s
}

// Do runs fn on the actor owning jamID and returns its error. A panic in fn
// is returned as an error.
func (s *ActorSystem) Do(ctx context.Context, jamID string, fn func(ctx context.Context) error) error {
	a, err := s.acquire(jamID)
	if err != nil {
		return err
	}
	defer s.release(a)

	req := request{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case a.mailbox <- req:
	case <-a.exited:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// 已入队的请求一定会被执行或拒绝，等待真实结果
	select {
	case err := <-req.done:
		return err
	case <-a.exited:
		select {
		case err := <-req.done:
			return err
		default:
			return ErrStopped
		}
	}
}

func (s *ActorSystem) acquire(jamID string) (*jamActor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}
	a := s.actors[jamID]
	if a == nil {
		a = newJamActor(jamID, s.conf.MailboxSize, s.now())
		s.actors[jamID] = a
		s.notifySize()
	}
	a.pending++
	return a, nil
}

func (s *ActorSystem) release(a *jamActor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.pending--
	a.lastUsed = s.now()
}

// Len returns the number of live actors.
func (s *ActorSystem) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actors)
}

func (s *ActorSystem) reapLoop() {
	defer close(s.reaperDone)
	interval := s.conf.IdleTimeout / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.reapIdle()
		case <-s.stopReaper:
			return
		}
	}
}

// reapIdle 回收空闲超过 IdleTimeout 且没有等待中请求的 actor
func (s *ActorSystem) reapIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, a := range s.actors {
		if a.pending > 0 || now.Sub(a.lastUsed) < s.conf.IdleTimeout {
			continue
		}
		a.Stop()
		delete(s.actors, id)
		n++
	}
	if n > 0 {
		log.Debugw("retired idle jam actors", "count", n, "live", len(s.actors))
		s.notifySize()
	}
	return n
}

func (s *ActorSystem) notifySize() {
	if s.onSize != nil {
		s.onSize(len(s.actors))
	}
}

// StopAll stops every actor after draining queued work; later Do calls fail.
func (s *ActorSystem) StopAll() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	actors := s.actors
	s.actors = make(map[string]*jamActor)
	s.notifySize()
	s.mu.Unlock()

	close(s.stopReaper)
	<-s.reaperDone
	for _, a := range actors {
		a.Stop()
	}
}

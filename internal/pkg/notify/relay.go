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

package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/go-arcade/ensemble/pkg/id"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/retry"
	"github.com/redis/go-redis/v9"
)

// Publisher is the part of a redis client the relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type message struct {
	name    string
	payload string
}

// Stats 转发统计
type Stats struct {
	Relayed atomic.Int64
	Dropped atomic.Int64
	Failed  atomic.Int64
}

// Relay forwards every event published on the bus to a redis channel, where
// chat and notification services subscribe. Handle only enqueues; a single
// goroutine publishes in enqueue order. Delivery is best effort: a full
// queue drops the event, and a failed publish is retried and then logged.
type Relay struct {
	client  Publisher
	conf    Conf
	timeout time.Duration
	now     func() time.Time

	ch   chan message
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup

	stats Stats
}

// NewRelay creates the relay and starts its publish loop; Close stops it.
func NewRelay(client Publisher, conf Conf) *Relay {
	conf.SetDefaults()
	r := &Relay{
		client:  client,
		conf:    conf,
		timeout: 3 * time.Second,
		now:     time.Now,
		ch:      make(chan message, conf.QueueSize),
		quit:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Attach registers the relay for all events on bus.
func (r *Relay) Attach(bus *event.EventBus) {
	bus.RegisterHandler(event.AllEvents, r)
}

// Handle 只做编码和入队，不等待 redis
func (r *Relay) Handle(ev event.Event) {
	payload, err := Encode(ev, r.now())
	if err != nil {
		log.Errorw("encode event failed", "event", ev.EventName(), "error", err)
		return
	}

	select {
	case <-r.quit:
		r.stats.Dropped.Add(1)
		log.Warnw("relay closed, event dropped", "event", ev.EventName())
		return
	default:
	}

	select {
	case r.ch <- message{name: ev.EventName(), payload: payload}:
	default:
		r.stats.Dropped.Add(1)
		log.Warnw("relay queue full, event dropped", "event", ev.EventName(), "queueSize", r.conf.QueueSize)
	}
}

// Close stops accepting events, publishes what is already queued and waits
// for the loop to exit or ctx to be done.
func (r *Relay) Close(ctx context.Context) error {
	r.once.Do(func() { close(r.quit) })

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		log.Warnw("relay close timed out", "pending", len(r.ch))
		return ctx.Err()
	}
}

// GetStats 获取转发统计
func (r *Relay) GetStats() map[string]int64 {
	return map[string]int64{
		"relayed": r.stats.Relayed.Load(),
		"dropped": r.stats.Dropped.Load(),
		"failed":  r.stats.Failed.Load(),
		"pending": int64(len(r.ch)),
	}
}

func (r *Relay) run() {
	defer r.wg.Done()

	for {
		select {
		case m := <-r.ch:
			r.publish(m)
		case <-r.quit:
			// 退出前发完队列中剩余的事件
			for {
				select {
				case m := <-r.ch:
					r.publish(m)
				default:
					return
				}
			}
		}
	}
}

func (r *Relay) publish(m message) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout*time.Duration(r.conf.MaxAttempts))
	defer cancel()

	err := retry.Do(ctx, func(ctx context.Context) error {
		return r.client.Publish(ctx, r.conf.Channel, m.payload).Err()
	},
		retry.WithMaxAttempts(r.conf.MaxAttempts),
		retry.WithBackoff(retry.Exponential(50*time.Millisecond, time.Second)),
		retry.WithJitter(retry.FullJitter),
	)
	if err != nil {
		r.stats.Failed.Add(1)
		log.Errorw("relay event failed", "event", m.name, "channel", r.conf.Channel, "error", err)
		return
	}
	r.stats.Relayed.Add(1)
	log.Debugw("event relayed", "event", m.name, "channel", r.conf.Channel)
}

// Encode wraps ev in an Envelope and serializes it.
func Encode(ev event.Event, at time.Time) (string, error) {
	body, err := sonic.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal payload failed: %w", err)
	}
	return sonic.MarshalString(Envelope{
		ID:         id.GetUlidAt(at),
		Name:       ev.EventName(),
		Type:       ev.EventType(),
		OccurredAt: at,
		Payload:    body,
	})
}

// Decode parses a relayed message.
func Decode(msg string) (Envelope, error) {
	var env Envelope
	if err := sonic.UnmarshalString(msg, &env); err != nil {
		return env, fmt.Errorf("decode envelope failed: %w", err)
	}
	return env, nil
}

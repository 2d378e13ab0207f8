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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ensemble/pkg/event"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotVacated struct {
	JamID  string `json:"jamId"`
	SlotID string `json:"slotId"`
}

func (slotVacated) EventName() string { return "SlotVacated" }
func (slotVacated) EventType() string { return "jam" }

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	channel  string
	messages []string
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func (f *fakePublisher) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingPublisher 在 release 关闭前阻塞每次发布
type blockingPublisher struct {
	fakePublisher
	release chan struct{}
}

func (b *blockingPublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	<-b.release
	return b.fakePublisher.Publish(ctx, channel, message)
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	f.channel = channel
	f.messages = append(f.messages, message.(string))
	return redis.NewIntResult(1, nil)
}

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := Encode(slotVacated{JamID: "j1", SlotID: "s1"}, at)
	require.NoError(t, err)

	env, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "SlotVacated", env.Name)
	assert.Equal(t, "jam", env.Type)
	assert.True(t, at.Equal(env.OccurredAt))
	assert.Len(t, env.ID, 26)

	var payload slotVacated
	require.NoError(t, sonic.Unmarshal(env.Payload, &payload))
	assert.Equal(t, slotVacated{JamID: "j1", SlotID: "s1"}, payload)

	_, err = Decode("{not json")
	assert.Error(t, err)
}

func closeRelay(t *testing.T, r *Relay) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Close(ctx))
}

func TestRelay_PublishesBusEvents(t *testing.T) {
	pub := &fakePublisher{}
	r := NewRelay(pub, Conf{})
	bus := event.NewEventBus()
	r.Attach(bus)

	bus.Publish(slotVacated{JamID: "j1", SlotID: "s1"})
	bus.Publish(slotVacated{JamID: "j1", SlotID: "s2"})
	closeRelay(t, r)

	msgs := pub.published()
	require.Len(t, msgs, 2)
	assert.Equal(t, DefaultChannel, pub.channel)
	for i, want := range []string{"s1", "s2"} {
		env, err := Decode(msgs[i])
		require.NoError(t, err)
		assert.Equal(t, "SlotVacated", env.Name)
		var payload slotVacated
		require.NoError(t, sonic.Unmarshal(env.Payload, &payload))
		assert.Equal(t, want, payload.SlotID)
	}
	assert.Equal(t, int64(2), r.GetStats()["relayed"])
}

func TestRelay_RetriesThenGivesUp(t *testing.T) {
	pub := &fakePublisher{failures: 2}
	r := NewRelay(pub, Conf{Channel: "test", MaxAttempts: 3})
	r.Handle(slotVacated{JamID: "j1"})
	closeRelay(t, r)
	assert.Equal(t, 3, pub.attempts())
	assert.Len(t, pub.published(), 1)

	pub = &fakePublisher{failures: 10}
	r = NewRelay(pub, Conf{Channel: "test", MaxAttempts: 2})
	assert.NotPanics(t, func() { r.Handle(slotVacated{JamID: "j1"}) })
	closeRelay(t, r)
	assert.Equal(t, 2, pub.attempts())
	assert.Empty(t, pub.published())
	assert.Equal(t, int64(1), r.GetStats()["failed"])
}

func TestRelay_HandleDoesNotWaitForRedis(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	r := NewRelay(pub, Conf{QueueSize: 1})

	start := time.Now()
	// 第一条被发布循环取走并阻塞，第二条占满队列，第三条丢弃
	r.Handle(slotVacated{JamID: "j1", SlotID: "s1"})
	require.Eventually(t, func() bool { return len(r.ch) == 0 }, time.Second, 5*time.Millisecond)
	r.Handle(slotVacated{JamID: "j1", SlotID: "s2"})
	r.Handle(slotVacated{JamID: "j1", SlotID: "s3"})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, int64(1), r.GetStats()["dropped"])

	close(pub.release)
	closeRelay(t, r)
	assert.Len(t, pub.published(), 2)
}

func TestRelay_CloseDropsLateEvents(t *testing.T) {
	pub := &fakePublisher{}
	r := NewRelay(pub, Conf{})
	closeRelay(t, r)
	closeRelay(t, r)

	r.Handle(slotVacated{JamID: "j1"})
	assert.Empty(t, pub.published())
	assert.Equal(t, int64(1), r.GetStats()["dropped"])
}

func TestRelay_CloseHonorsContext(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	r := NewRelay(pub, Conf{})
	r.Handle(slotVacated{JamID: "j1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)

	close(pub.release)
	closeRelay(t, r)
}

func TestProvideRelay_NoRedis(t *testing.T) {
	r, cleanup := ProvideRelay(nil, Conf{})
	assert.Nil(t, r)
	assert.NotPanics(t, cleanup)
}

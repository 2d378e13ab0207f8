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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestActorSystem_SerializesSameJam(t *testing.T) {
	s := NewActorSystem(Conf{})
	defer s.StopAll()

	var (
		running atomic.Int32
		maxSeen atomic.Int32
		total   int
		wg      sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(context.Background(), "jam-1", func(context.Context) error {
				n := running.Add(1)
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}
				total++
				time.Sleep(time.Millisecond)
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxSeen.Load())
	assert.Equal(t, 50, total)
}

func TestActorSystem_ParallelAcrossJams(t *testing.T) {
	s := NewActorSystem(Conf{})
	defer s.StopAll()

	entered := make(chan struct{})
	release := make(chan struct{})
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Do(context.Background(), "jam-a", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	// jam-a 阻塞时 jam-b 仍可执行
	err := s.Do(context.Background(), "jam-b", func(context.Context) error {
		close(release)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	assert.Equal(t, 2, s.Len())
}

func TestActorSystem_ReturnsError(t *testing.T) {
	s := NewActorSystem(Conf{})
	defer s.StopAll()

	boom := errors.New("boom")
	err := s.Do(context.Background(), "jam-1", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	err = s.Do(context.Background(), "jam-1", func(context.Context) error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	// actor 在 panic 后仍可用
	assert.NoError(t, s.Do(context.Background(), "jam-1", func(context.Context) error { return nil }))
}

func TestActorSystem_CanceledContext(t *testing.T) {
	s := NewActorSystem(Conf{})
	defer s.StopAll()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Do(ctx, "jam-1", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestActorSystem_ReapsIdleActors(t *testing.T) {
	var sizes []int
	var mu sync.Mutex
	s := NewActorSystem(Conf{IdleTimeout: 20 * time.Millisecond}, WithSizeObserver(func(n int) {
		mu.Lock()
		sizes = append(sizes, n)
		mu.Unlock()
	}))
	defer s.StopAll()

	require.NoError(t, s.Do(context.Background(), "jam-1", func(context.Context) error { return nil }))
	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	// 回收后再次使用会重新创建
	require.NoError(t, s.Do(context.Background(), "jam-1", func(context.Context) error { return nil }))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(sizes), 3)
	assert.Equal(t, []int{1, 0, 1}, sizes[:3])
}

func TestActorSystem_ReapSkipsBusyActors(t *testing.T) {
	s := NewActorSystem(Conf{IdleTimeout: time.Hour})
	defer s.StopAll()

	base := time.Now()
	s.now = func() time.Time { return base }

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Do(context.Background(), "busy", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	require.NoError(t, s.Do(context.Background(), "idle", func(context.Context) error { return nil }))

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.Equal(t, 1, s.reapIdle())
	assert.Equal(t, 1, s.Len())

	close(release)
	require.NoError(t, <-done)
}

func TestActorSystem_StopAll(t *testing.T) {
	s := NewActorSystem(Conf{})
	require.NoError(t, s.Do(context.Background(), "jam-1", func(context.Context) error { return nil }))

	s.StopAll()
	s.StopAll()

	err := s.Do(context.Background(), "jam-1", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, 0, s.Len())
}

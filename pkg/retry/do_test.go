package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConflict = errors.New("conflict")

func TestDo_Success(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetrySuccess(t *testing.T) {
	attempts := 0
	var retried []int
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, WithMaxAttempts(3), WithBackoff(Fixed(time.Millisecond)), WithOnRetry(func(n int, _ error) {
		retried = append(retried, n)
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_MaxAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("persistent error")
	}, WithMaxAttempts(3), WithBackoff(Fixed(0)))
	assert.EqualError(t, err, "persistent error")
	assert.Equal(t, 3, attempts)
}

func TestDo_RetryIfOn(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("permission denied")
	}, WithMaxAttempts(5), WithBackoff(Fixed(0)), WithRetryIf(On(errConflict)))
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)

	attempts = 0
	err = Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errConflict
		}
		return nil
	}, WithMaxAttempts(5), WithBackoff(Fixed(0)), WithRetryIf(On(errConflict)))
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("temporary error")
	}, WithMaxAttempts(5), WithBackoff(Fixed(time.Second)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestExponential(t *testing.T) {
	b := Exponential(10*time.Millisecond, 50*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, b.Next(0))
	assert.Equal(t, 20*time.Millisecond, b.Next(1))
	assert.Equal(t, 40*time.Millisecond, b.Next(2))
	assert.Equal(t, 50*time.Millisecond, b.Next(3))
}

func TestFullJitter(t *testing.T) {
	assert.Zero(t, FullJitter(0))
	for i := 0; i < 50; i++ {
		d := FullJitter(10 * time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, 10*time.Millisecond)
	}
}

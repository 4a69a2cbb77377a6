package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDoWithResultRetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), Config{MaxAttempts: 3, Backoff: ConstantBackoff(0)}, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), Config{
		MaxAttempts: 5,
		Backoff:     ConstantBackoff(0),
		ShouldRetry: func(err error) bool { return errors.Is(err, errTransient) },
	}, func() error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Config{MaxAttempts: 2, Backoff: ConstantBackoff(0)}, func() error {
		calls++
		return errTransient
	})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls)
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Config{MaxAttempts: 3}, func() error {
		t.Fatal("fn must not run on a cancelled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDoAbortsWaitWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := Do(ctx, Config{MaxAttempts: 3, Backoff: ConstantBackoff(time.Minute)}, func() error {
		return errTransient
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, errTransient)
}

func TestExponentialBackoffGrows(t *testing.T) {
	backoff := ExponentialBackoff(10 * time.Millisecond)
	first := backoff(1)
	third := backoff(3)
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.Less(t, first, 16*time.Millisecond)
	assert.GreaterOrEqual(t, third, 40*time.Millisecond)
	assert.Equal(t, time.Duration(0), ExponentialBackoff(0)(2))
}

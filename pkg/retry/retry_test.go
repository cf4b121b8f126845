package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoWithLog_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("source down")
	logged := 0

	err := DoWithLog(context.Background(), fastConfig(3), "regeneration", func() error {
		return cause
	}, func(attempt int, err error, nextDelay time.Duration) {
		logged++
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "regeneration: max retry attempts (3) exceeded")
	assert.Equal(t, 2, logged)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(3), func() error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestNextDelay_CapsAtMax(t *testing.T) {
	cfg := Config{BackoffFactor: 10, MaxDelay: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, nextDelay(20*time.Millisecond, cfg))
	assert.Equal(t, 20*time.Millisecond, nextDelay(2*time.Millisecond, cfg))
}

package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_Success(t *testing.T) {
	attempts := 0
	value, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond},
		func(context.Context) ([]float32, error) {
			attempts++
			return []float32{1, 2}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, value)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	value, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond},
		func(context.Context) (int, error) {
			attempts++
			if attempts < 3 {
				return 0, errors.New("temporary error")
			}
			return attempts, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, value)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		func(context.Context) (int, error) {
			attempts++
			return 0, expectedErr
		})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly MaxAttempts times")
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := Retry(ctx, RetryPolicy{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond},
		func(context.Context) (int, error) {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return 0, errors.New("error")
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestRetry_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		attempts := 0
		_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: n},
			func(context.Context) (int, error) {
				attempts++
				return 0, nil
			})
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Equal(t, 0, attempts)
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, p.delay(2))
	assert.Equal(t, 20*time.Millisecond, p.delay(3))
	assert.Equal(t, 40*time.Millisecond, p.delay(4))

	p.MaxDelay = 25 * time.Millisecond
	assert.Equal(t, 25*time.Millisecond, p.delay(4))
}

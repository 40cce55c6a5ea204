package retrylimit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryMaxSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return nil
	}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryMaxRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryMaxExhaustsAttempts(t *testing.T) {
	base := errors.New("always failing")
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return base
	}, nil, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, 2, calls)
}

func TestWithRetryMaxStopsOnFatal(t *testing.T) {
	calls := 0
	err := WithRetryMax(context.Background(), func() error {
		calls++
		return &FatalError{Err: errors.New("do not retry")}
	}, nil, 5)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryMaxHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetryMax(ctx, func() error { return nil }, nil, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

type statusError struct{ code int }

func (e *statusError) Error() string   { return "status error" }
func (e *statusError) StatusCode() int { return e.code }

func TestAdaptiveLimiterBacksOffOnRateLimit(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 10, 1, 0.5)
	assert.Equal(t, 8.0, lim.CurrentLimit())

	lim.RateLimited()
	assert.Equal(t, 4.0, lim.CurrentLimit())

	lim.RateLimited()
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit(), "floor is respected")
}

func TestAdaptiveLimiterSuccessHeldBackAfterRecentError(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
	lim.RateLimited()
	before := lim.CurrentLimit()

	// A success right after an error must not speed the limiter back up.
	lim.Success()
	assert.Equal(t, before, lim.CurrentLimit())
}

func TestShouldRateLimit(t *testing.T) {
	assert.True(t, shouldRateLimit(&statusError{code: 429}))
	assert.True(t, shouldRateLimit(&statusError{code: 503}))
	assert.False(t, shouldRateLimit(&statusError{code: 404}))
	assert.False(t, shouldRateLimit(errors.New("plain error")))
}

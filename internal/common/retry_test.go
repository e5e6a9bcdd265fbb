package common

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")
	fast := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errBoom
			}
			return nil
		}, fast)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errBoom
		}, fast)
		require.ErrorIs(t, err, ErrMaxRetries)
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errBoom, Retryable: false}
		}, fast)
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, 1, calls)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return errBoom }, RetryOptions{
			MaxAttempts:  5,
			InitialDelay: time.Second,
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestUserError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewUserError("could not reach the catalog database", inner)

	assert.Equal(t, "could not reach the catalog database: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "just a message", NewUserError("just a message", nil).Error())
}

func TestParseLevelAndHandler(t *testing.T) {
	_, err := ParseLevel("loud")
	require.ErrorIs(t, err, ErrInvalidConfig)

	lvl, err := ParseLevel("warn")
	require.NoError(t, err)

	for _, format := range []string{"console", "json", "pretty"} {
		h, err := NewLogHandler(&strings.Builder{}, lvl, format)
		require.NoError(t, err, format)
		assert.NotNil(t, h)
	}

	_, err = NewLogHandler(&strings.Builder{}, lvl, "xml")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoffWaits(t *testing.T) {
	start := time.Now()
	err := retryBackoff(context.Background(), 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRetryBackoffCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := retryBackoff(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
	// attempt 2 would otherwise wait 150ms
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRetryBackoffCancelMidWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := retryBackoff(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

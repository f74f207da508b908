package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(1.0, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx))
	}
}

func TestRateLimiter_BlocksUntilContextCanceled(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	require.NoError(t, limiter.Allow(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Allow(ctx)
	assert.Error(t, err, "second token is not available for ~1000s")
}

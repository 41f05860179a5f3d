//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFeeCache_Integration needs a running Redis at REDIS_ADDR.
// To run this test, use: REDIS_ADDR=localhost:6379 go test -tags=integration ./internal/cache/redis/
func TestFeeCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	c, err := New(ctx, ClientConfig{Addr: addr, Prefix: "arbscan-test-" + uuid.NewString() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	cache := NewFeeCache(c)

	_, ok, err := cache.Get(ctx, "coinex", "XMR")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "coinex", "XMR", decimal.RequireFromString("0.0001"), time.Minute))

	fee, ok, err := cache.Get(ctx, "coinex", "XMR")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, fee.Equal(decimal.RequireFromString("0.0001")))
}

func TestNew_Unreachable(t *testing.T) {
	_, err := New(context.Background(), ClientConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

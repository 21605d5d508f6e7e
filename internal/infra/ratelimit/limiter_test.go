package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWindow(t *testing.T) {
	l := NewMemory(2, time.Minute)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "guest", "1.2.3.4", now)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, _ := l.Allow(ctx, "guest", "1.2.3.4", now.Add(10*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 50*time.Second, d.RetryAfter)

	d, _ = l.Allow(ctx, "guest", "5.6.7.8", now)
	assert.True(t, d.Allowed)

	d, _ = l.Allow(ctx, "guest", "1.2.3.4", now.Add(time.Minute))
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)

	assert.Equal(t, 1, l.Prune(now.Add(90*time.Second)))
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedis(client, "test:", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "guest", "ip", time.Now())
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := l.Allow(ctx, "guest", "ip", time.Now())
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.Count)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.True(t, mr.Exists("test:guest:ip"))

	mr.FastForward(time.Minute)
	d, err = l.Allow(ctx, "guest", "ip", time.Now())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestDisabledLimiter(t *testing.T) {
	d, err := NewMemory(0, time.Minute).Allow(context.Background(), "s", "x", time.Now())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestRedisRevoker(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	revoker := NewRedisRevoker(rdb, "test:revoked:")

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	assert.True(t, mr.Exists("test:revoked:jti-1"))

	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(61 * time.Minute)
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevokerSkipsExpired(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	revoker := NewRedisRevoker(rdb, "test:revoked:")

	require.NoError(t, revoker.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("test:revoked:old"))
}

func TestRedisRevokerUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	_, err := NewRedisRevoker(rdb, "p:").IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestNopRevoker(t *testing.T) {
	ctx := context.Background()
	var revoker Revoker = NopRevoker{}
	require.NoError(t, revoker.Revoke(ctx, "jti", time.Now().Add(time.Hour)))
	revoked, err := revoker.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

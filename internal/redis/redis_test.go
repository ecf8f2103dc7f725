package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := New(ctx, url)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestService_Blacklist(t *testing.T) {
	s := setupRedis(t)
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := s.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.StoreBlacklistedToken(ctx, jti, time.Minute))
	revoked, err = s.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := s.Client().TTL(ctx, blacklistPrefix+jti).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, s.Ping(ctx))
}

func TestService_BlacklistExpiredToken(t *testing.T) {
	s := setupRedis(t)
	ctx := context.Background()
	jti := uuid.NewString()

	require.NoError(t, s.StoreBlacklistedToken(ctx, jti, 0))
	revoked, err := s.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(context.Background(), "not a redis url")
	assert.Error(t, err)
}

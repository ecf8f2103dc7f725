package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/fedutinova/yanews/internal/auth"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "yanews:blacklist:"

// Service keeps revoked session token IDs.
type Service struct {
	client *redis.Client
}

var _ auth.Blacklist = (*Service)(nil)

func New(ctx context.Context, redisURL string) (*Service, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{client: client}, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *Service) Client() *redis.Client {
	return s.client
}

func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// StoreBlacklistedToken revokes tokenID for ttl. A non-positive ttl means the
// token has already expired and nothing is stored.
func (s *Service) StoreBlacklistedToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistPrefix+tokenID, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *Service) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}

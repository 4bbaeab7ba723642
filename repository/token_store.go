package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists the single valid refresh token per user in a
// TTL-expiring key-value store. Overwritten on each login and signup.
type TokenStore interface {
	Set(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// RedisTokenStore implements TokenStore on Redis.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a new RedisTokenStore.
func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) key(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}

func (s *RedisTokenStore) Set(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(userID), token, ttl).Err()
}

// Get returns the stored refresh token, or empty string when no token exists
// (absent or expired).
func (s *RedisTokenStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

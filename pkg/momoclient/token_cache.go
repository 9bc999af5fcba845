package momoclient

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache stores a provider access token between calls. Implementations
// must return an empty string, not an error, when no token is cached.
type TokenCache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
}

// RedisTokenCache shares one provider token across connector instances.
type RedisTokenCache struct {
	client redis.UniversalClient
	key    string
}

// NewRedisTokenCache creates a redis-backed token cache under the given key
// prefix.
func NewRedisTokenCache(client redis.UniversalClient, prefix string) *RedisTokenCache {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = "core_connector"
	}
	trimmed = strings.TrimSuffix(trimmed, ":")

	return &RedisTokenCache{
		client: client,
		key:    trimmed + ":momo_access_token",
	}
}

func (c *RedisTokenCache) Get(ctx context.Context) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	token, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	if c == nil || c.client == nil || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key, token, ttl).Err()
}

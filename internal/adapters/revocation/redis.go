package revocation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"teamup/internal/domain"
)

type redisCache struct {
	client redis.UniversalClient
}

// NewRedisCache returns a RevocationCache that treats the presence of
// "blacklisted:<token>" as revoked. The value stored under the key is ignored.
func NewRedisCache(client redis.UniversalClient) domain.RevocationCache {
	return &redisCache{client: client}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (c *redisCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, domain.RevokedTokenKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("%w: revocation lookup: %v", domain.ErrInfrastructure, err)
	}
	return n > 0, nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/otonolab/autopress/internal/models"
	"github.com/otonolab/autopress/internal/utils"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores the published-post list as one JSON value keyed by
// the site URL hash, so several sites can share an instance.
type RedisCache struct {
	client *redis.Client
	key    string
}

var _ PostCache = (*RedisCache)(nil)

func NewRedisCache(redisURL, prefix, siteURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		key:    prefix + "posts:" + utils.Hash(siteURL),
	}, nil
}

func (r *RedisCache) Get(ctx context.Context) ([]models.PublishedPost, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}

	var posts []models.PublishedPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		// A stale or mangled value is the same as a miss.
		return nil, false, nil
	}
	return posts, true, nil
}

func (r *RedisCache) Set(ctx context.Context, posts []models.PublishedPost, ttl time.Duration) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to marshal posts: %w", err)
	}
	return r.client.Set(ctx, r.key, raw, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

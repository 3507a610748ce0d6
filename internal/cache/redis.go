// Package cache keeps rendered leaderboard pages in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quest-tracker/internal/domain"
)

const (
	defaultKeyPrefix = "quest:"
	defaultTTL       = time.Minute

	keyGeneration = "leaderboard:generation"
	keyPage       = "leaderboard:top:"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long a page survives if no write invalidates it.
	TTL       time.Duration
	KeyPrefix string
}

// NewClient builds a go-redis client from cfg.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// LeaderboardCache stores Top pages under a generation-stamped key.
// Invalidate bumps the generation with INCR, so pages computed before a
// write are never read again and simply expire.
type LeaderboardCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewLeaderboardCache(client redis.Cmdable, cfg Config) *LeaderboardCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &LeaderboardCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *LeaderboardCache) generationKey() string {
	return c.prefix + keyGeneration
}

func (c *LeaderboardCache) pageKey(generation int64, limit int) string {
	return fmt.Sprintf("%s%s%d:%d", c.prefix, keyPage, generation, limit)
}

func (c *LeaderboardCache) Get(ctx context.Context, limit int) ([]domain.LeaderboardEntry, int64, bool, error) {
	generation, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, 0, false, fmt.Errorf("read leaderboard generation: %w", err)
		}
		generation = 0
	}

	data, err := c.client.Get(ctx, c.pageKey(generation, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, generation, false, nil
		}
		return nil, 0, false, fmt.Errorf("read leaderboard page: %w", err)
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// treat a corrupt page as a miss; the next Put overwrites it
		return nil, generation, false, nil
	}
	return entries, generation, true, nil
}

func (c *LeaderboardCache) Put(ctx context.Context, generation int64, limit int, entries []domain.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard page: %w", err)
	}
	if err := c.client.Set(ctx, c.pageKey(generation, limit), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write leaderboard page: %w", err)
	}
	return nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump leaderboard generation: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cache is the Redis-backed cache for narrations and dashboard lists.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

const (
	PopularQueriesKey = "popular:queries"
	SystemHealthKey   = "system:health"
)

// GetNarration returns redis.Nil on a miss.
func (c *Cache) GetNarration(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *Cache) SetNarration(ctx context.Context, key, text string, expiration time.Duration) error {
	return c.client.Set(ctx, key, text, expiration).Err()
}

func (c *Cache) CachePopularQueries(ctx context.Context, queries []models.PopularQuery, expiration time.Duration) error {
	data, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("failed to marshal popular queries: %w", err)
	}

	return c.client.Set(ctx, PopularQueriesKey, data, expiration).Err()
}

func (c *Cache) GetCachedPopularQueries(ctx context.Context) ([]models.PopularQuery, error) {
	data, err := c.client.Get(ctx, PopularQueriesKey).Result()
	if err != nil {
		return nil, err
	}

	var queries []models.PopularQuery
	err = json.Unmarshal([]byte(data), &queries)
	return queries, err
}

func (c *Cache) CacheSystemHealth(ctx context.Context, health interface{}, expiration time.Duration) error {
	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal system health: %w", err)
	}

	return c.client.Set(ctx, SystemHealthKey, data, expiration).Err()
}

// GetCachedSystemHealth decodes the last cached health summary into out.
func (c *Cache) GetCachedSystemHealth(ctx context.Context, out interface{}) error {
	data, err := c.client.Get(ctx, SystemHealthKey).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), out)
}

// CacheStats are the server-wide keyspace counters from INFO stats.
type CacheStats struct {
	Hits   int64
	Misses int64
}

func (c *Cache) GetCacheStats(ctx context.Context) (CacheStats, error) {
	info, err := c.client.Info(ctx, "stats").Result()
	if err != nil {
		return CacheStats{}, err
	}

	return CacheStats{
		Hits:   extractStat(info, "keyspace_hits"),
		Misses: extractStat(info, "keyspace_misses"),
	}, nil
}

func extractStat(info, key string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, key+":") {
			n, err := strconv.ParseInt(strings.TrimPrefix(line, key+":"), 10, 64)
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

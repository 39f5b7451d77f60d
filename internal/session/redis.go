package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKey = "session:quota:%s"

// RedisStore shares counters between server instances. Each value is JSON
// with a TTL equal to the remaining window.
type RedisStore struct {
	client     *redis.Client
	maxRetries int
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, maxRetries: 5}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Counter, bool, error) {
	return load(ctx, s.client, fmt.Sprintf(sessionKey, id))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, g getter, key string) (Counter, bool, error) {
	data, err := g.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Counter{}, false, nil
	}
	if err != nil {
		return Counter{}, false, err
	}
	var c Counter
	if err := json.Unmarshal(data, &c); err != nil {
		return Counter{}, false, fmt.Errorf("failed to decode session counter: %w", err)
	}
	return c, true, nil
}

// Increment uses optimistic locking so concurrent requests never lose a count.
func (s *RedisStore) Increment(ctx context.Context, id string, now time.Time, window time.Duration) (Counter, error) {
	key := fmt.Sprintf(sessionKey, id)

	var result Counter
	txf := func(tx *redis.Tx) error {
		c, ok, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if !ok || c.expired(now, window) {
			c = Counter{Started: now}
		}
		c.Count++

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		ttl := c.Started.Add(window).Sub(now)
		if ttl <= 0 {
			ttl = window
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		if err == nil {
			result = c
		}
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return Counter{}, err
		}
	}
	return Counter{}, fmt.Errorf("session %s: too much contention", id)
}

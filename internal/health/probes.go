package health

import (
	"context"

	"github.com/Ayash-Bera/vbm-explorer/internal/database"
	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
)

// RedisProbe pings Redis and publishes its keyspace counters.
func RedisProbe(ping func(context.Context) error, cache *database.Cache) Probe {
	return Probe{
		Name: "redis",
		Check: func(ctx context.Context) error {
			if err := ping(ctx); err != nil {
				return err
			}
			stats, err := cache.GetCacheStats(ctx)
			if err != nil {
				return err
			}
			metrics.RedisKeyspace.WithLabelValues("hits").Set(float64(stats.Hits))
			metrics.RedisKeyspace.WithLabelValues("misses").Set(float64(stats.Misses))
			return nil
		},
	}
}

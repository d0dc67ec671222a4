package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type redisLister interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisSource reads a catalog kept as a Redis list of JSON records. Writers
// LPUSH new records, so the list is already newest first.
type RedisSource struct {
	rdb redisLister
	key string
}

func NewRedisSource(rdb redisLister, key string) *RedisSource {
	return &RedisSource{rdb: rdb, key: key}
}

func (r *RedisSource) ListAll(ctx context.Context) ([]Item, error) {
	// redis/go-redis/v9: LRange with 0..-1 returns the whole list.
	vals, err := r.rdb.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog list %q: %w", r.key, err)
	}

	items := make([]Item, 0, len(vals))
	for i, v := range vals {
		var it Item
		if err := json.Unmarshal([]byte(v), &it); err != nil {
			slog.Warn("CATALOG: Skipping undecodable redis record", "key", r.key, "index", i, "error", err)
			continue
		}
		items = append(items, it)
	}
	return normalize(items), nil
}

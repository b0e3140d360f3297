package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	countKeyPrefix   = "comment_count:"
	versionKeyPrefix = "comment_count_version:"
	CountTTL         = 5 * time.Minute
	// Versions outlive the counts they guard.
	versionTTL = 24 * time.Hour
)

// CountCache stores per-photo comment counts in Redis.
type CountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCountCache parses a redis:// URL and verifies the connection.
func NewCountCache(redisURL string) (*CountCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return newCountCache(rdb), nil
}

func newCountCache(rdb *redis.Client) *CountCache {
	return &CountCache{client: rdb, ttl: CountTTL}
}

func countKey(photoID string) string {
	return countKeyPrefix + photoID
}

func versionKey(photoID string) string {
	return versionKeyPrefix + photoID
}

// setIfCurrent writes each count only when its version key still holds the
// version the caller read. KEYS are version/count pairs, ARGV[1] is the TTL in
// milliseconds followed by expected version/count pairs.
var setIfCurrent = redis.NewScript(`
local written = 0
for i = 1, #KEYS, 2 do
	local current = redis.call("GET", KEYS[i]) or "0"
	if current == ARGV[i + 1] then
		redis.call("SET", KEYS[i + 1], ARGV[i + 2], "PX", ARGV[1])
		written = written + 1
	end
end
return written
`)

// GetCounts returns the cached counts and the current version of every id.
// Ids without a cached value are absent from the counts map.
func (c *CountCache) GetCounts(ctx context.Context, photoIDs []string) (map[string]int, map[string]int64, error) {
	counts := make(map[string]int, len(photoIDs))
	versions := make(map[string]int64, len(photoIDs))
	if len(photoIDs) == 0 {
		return counts, versions, nil
	}

	keys := make([]string, 0, 2*len(photoIDs))
	for _, id := range photoIDs {
		keys = append(keys, countKey(id))
	}
	for _, id := range photoIDs {
		keys = append(keys, versionKey(id))
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cached counts: %w", err)
	}

	for i, id := range photoIDs {
		if n, ok := parseInt(values[i]); ok {
			counts[id] = int(n)
		}
		v, _ := parseInt(values[len(photoIDs)+i])
		versions[id] = v
	}
	return counts, versions, nil
}

// SetCounts caches counts whose version is unchanged since GetCounts.
// Counts computed before a concurrent Invalidate are dropped.
func (c *CountCache) SetCounts(ctx context.Context, counts map[string]int, versions map[string]int64) error {
	keys := make([]string, 0, 2*len(counts))
	args := make([]interface{}, 0, 1+2*len(counts))
	args = append(args, c.ttl.Milliseconds())
	for id, n := range counts {
		v, ok := versions[id]
		if !ok {
			continue
		}
		keys = append(keys, versionKey(id), countKey(id))
		args = append(args, strconv.FormatInt(v, 10), n)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := setIfCurrent.Run(ctx, c.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("failed to cache counts: %w", err)
	}
	return nil
}

// Invalidate bumps the photo's version and drops its cached count.
func (c *CountCache) Invalidate(ctx context.Context, photoID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(photoID))
		pipe.Expire(ctx, versionKey(photoID), versionTTL)
		pipe.Del(ctx, countKey(photoID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate count: %w", err)
	}
	return nil
}

func parseInt(value interface{}) (int64, bool) {
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *CountCache) Close() error {
	return c.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/config"
)

// Cache is a namespaced key/value cache over redis. It is an
// optimization layer, never a source of truth: every operation is
// fail-soft, so a dead redis degrades to a 100% miss rate instead of
// taking the API down with it.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient connects to redis and verifies the connection.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// New creates a cache instance scoped to a key prefix (playlists,
// stores, ...) so logical caches can be cleared independently.
func New(rdb *redis.Client, prefix string, defaultTTL time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: defaultTTL}
}

func (c *Cache) namespaced(key string) string {
	return c.prefix + ":" + key
}

// Get loads a key into dest. Returns false on a miss, and also on any
// backend or decode error — callers cannot tell the difference, and
// must not need to.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.rdb.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("⚠️ Cache get %s failed: %v", c.namespaced(key), err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("⚠️ Cache decode %s failed: %v", c.namespaced(key), err)
		return false
	}
	return true
}

// Set writes a JSON-serialized value with the instance TTL, or an
// override when given. Best-effort: failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl ...time.Duration) {
	expiry := c.ttl
	if len(ttl) > 0 {
		expiry = ttl[0]
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("⚠️ Cache encode %s failed: %v", c.namespaced(key), err)
		return
	}

	if err := c.rdb.Set(ctx, c.namespaced(key), data, expiry).Err(); err != nil {
		log.Printf("⚠️ Cache set %s failed: %v", c.namespaced(key), err)
	}
}

// Delete removes a single key. Best-effort.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, c.namespaced(key)).Err(); err != nil {
		log.Printf("⚠️ Cache delete %s failed: %v", c.namespaced(key), err)
	}
}

// Clear removes every key under the instance prefix, or under
// prefix:pattern when a pattern is given. Uses SCAN rather than a
// blocking KEYS/FLUSH so other namespaces are untouched.
func (c *Cache) Clear(ctx context.Context, pattern ...string) {
	match := c.prefix + ":*"
	if len(pattern) > 0 && pattern[0] != "" {
		match = c.namespaced(pattern[0])
	}

	var keys []string
	iter := c.rdb.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("⚠️ Cache scan %s failed: %v", match, err)
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Cache clear %s failed: %v", match, err)
	}
}

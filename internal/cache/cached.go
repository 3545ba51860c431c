package cache

import (
	"context"
	"reflect"
	"time"
)

// Cached wraps a fetch with read-through caching. On a hit the fetch
// is never invoked; on a miss it runs exactly once and its result is
// written back best-effort. Fetch errors pass through unchanged and
// nothing is cached for them, so a cached value is always something
// the source of truth once returned. A nil cache degrades to a plain
// fetch. ttl <= 0 means the instance default.
func Cached[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if c == nil {
		return fetch()
	}

	var hit T
	if c.Get(ctx, key, &hit) {
		return hit, nil
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	// Don't cache nil results: a later hit must never hide data that
	// has appeared in the meantime. An empty (non-nil) slice is a
	// valid answer and is cached.
	if !isNil(value) {
		if ttl > 0 {
			c.Set(ctx, key, value, ttl)
		} else {
			c.Set(ctx, key, value)
		}
	}

	return value, nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

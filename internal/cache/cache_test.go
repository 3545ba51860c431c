package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestCache spins up an in-process redis, mirroring how the DB
// layer is tested against in-memory sqlite.
func newTestCache(t *testing.T, prefix string) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, New(rdb, prefix, 1*time.Minute)
}

func TestGetMissingKey(t *testing.T) {
	_, c := newTestCache(t, "playlists")

	var out string
	if c.Get(context.Background(), "never-written", &out) {
		t.Fatal("Get should report a miss for a key that was never set")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	_, c := newTestCache(t, "playlists")
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c.Set(ctx, "summer", payload{Name: "Summer Hits", Count: 42})

	var out payload
	if !c.Get(ctx, "summer", &out) {
		t.Fatal("Expected a hit immediately after Set")
	}
	if out.Name != "Summer Hits" || out.Count != 42 {
		t.Errorf("Round trip corrupted value: %+v", out)
	}
}

func TestTTLExpiry(t *testing.T) {
	mr, c := newTestCache(t, "playlists")
	ctx := context.Background()

	c.Set(ctx, "short-lived", "value", 10*time.Second)

	var out string
	if !c.Get(ctx, "short-lived", &out) {
		t.Fatal("Expected a hit before the TTL elapsed")
	}

	mr.FastForward(11 * time.Second)

	if c.Get(ctx, "short-lived", &out) {
		t.Error("Expected a miss after the TTL elapsed")
	}
}

func TestClearIsPrefixScoped(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	playlists := New(rdb, "playlists", time.Minute)
	stores := New(rdb, "stores", time.Minute)

	playlists.Set(ctx, "a", 1)
	playlists.Set(ctx, "b", 2)
	stores.Set(ctx, "a", 3)

	playlists.Clear(ctx)

	var out int
	if playlists.Get(ctx, "a", &out) || playlists.Get(ctx, "b", &out) {
		t.Error("Clear should remove every key under the playlists prefix")
	}
	if !stores.Get(ctx, "a", &out) {
		t.Error("Clear must not touch keys under a different prefix")
	}
	if out != 3 {
		t.Errorf("Store key corrupted, got %d", out)
	}
}

func TestFailSoftWhenBackendDown(t *testing.T) {
	mr, c := newTestCache(t, "playlists")
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	mr.Close() // Kill the backend

	var out string
	if c.Get(ctx, "k", &out) {
		t.Error("Get against a dead backend should be a miss, not a panic or error")
	}

	// All of these must be safe no-ops
	c.Set(ctx, "k2", "v2")
	c.Delete(ctx, "k")
	c.Clear(ctx)
}

func TestCachedFetchesOnce(t *testing.T) {
	_, c := newTestCache(t, "playlists")
	ctx := context.Background()

	calls := 0
	fetch := func() ([]string, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("source exhausted")
		}
		return []string{"track-a", "track-b"}, nil
	}

	first, err := Cached(ctx, c, "tracks", 0, fetch)
	if err != nil {
		t.Fatalf("First call failed: %v", err)
	}

	second, err := Cached(ctx, c, "tracks", 0, fetch)
	if err != nil {
		t.Fatalf("Second call failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("Fetch invoked %d times, want 1 (second call must be a cache hit)", calls)
	}
	if len(first) != 2 || len(second) != 2 || second[0] != "track-a" {
		t.Errorf("Values diverged: first=%v second=%v", first, second)
	}
}

func TestCachedFetchErrorPropagates(t *testing.T) {
	_, c := newTestCache(t, "playlists")

	wantErr := errors.New("db unavailable")
	_, err := Cached(context.Background(), c, "k", 0, func() (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Fetch error must pass through unchanged, got %v", err)
	}

	// Nothing may be cached for a failed fetch
	var out string
	if c.Get(context.Background(), "k", &out) {
		t.Error("Failed fetch result must not be cached")
	}
}

func TestCachedNilCacheBypasses(t *testing.T) {
	calls := 0
	value, err := Cached(context.Background(), nil, "k", 0, func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || value != 7 || calls != 1 {
		t.Errorf("Nil cache should degrade to a plain fetch: value=%d calls=%d err=%v", value, calls, err)
	}
}

func TestCachedNilResultNotCached(t *testing.T) {
	_, c := newTestCache(t, "playlists")
	ctx := context.Background()

	calls := 0
	fetch := func() (*string, error) {
		calls++
		return nil, nil
	}

	if _, err := Cached(ctx, c, "absent", 0, fetch); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := Cached(ctx, c, "absent", 0, fetch); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if calls != 2 {
		t.Errorf("Nil results must not be cached; fetch ran %d times, want 2", calls)
	}
}

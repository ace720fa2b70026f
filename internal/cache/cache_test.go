package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestVideoKeyIsDeterministic(t *testing.T) {
	c := New(NewMemoryStore(), time.Minute, true)

	first := c.VideoKey("youtube", "dQw4w9WgXcQ")
	second := c.VideoKey("youtube", "dQw4w9WgXcQ")
	if first != second {
		t.Fatalf("expected identical keys, got %q and %q", first, second)
	}

	// md5("dQw4w9WgXcQ") pinned so persisted caches survive restarts.
	want := "videos.video.youtube.1b4237f476826986da63022a76c35bb1"
	if first != want {
		t.Fatalf("expected key %q got %q", want, first)
	}
}

func TestVideoKeyDivergesPerGatewayAndVideo(t *testing.T) {
	c := New(NewMemoryStore(), time.Minute, true)

	keys := map[string]struct{}{
		c.VideoKey("youtube", "abc"): {},
		c.VideoKey("vimeo", "abc"):   {},
		c.VideoKey("youtube", "def"): {},
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 distinct keys got %d", len(keys))
	}
}

func TestAccountKey(t *testing.T) {
	c := New(NewMemoryStore(), time.Minute, true)

	if got := c.AccountKey("vimeo"); got != "videos.oauth_account.vimeo" {
		t.Fatalf("unexpected account key %q", got)
	}
}

func TestNewDefaultsTTL(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, 0, true)

	if c.ttl != 15*time.Minute {
		t.Fatalf("expected default ttl got %s", c.ttl)
	}
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	ctx := context.Background()
	if err := store.Set(ctx, "key", map[string]string{"hello": "world"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var value map[string]string
	found, err := store.Get(ctx, "key", &value)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if value["hello"] != "world" {
		t.Fatalf("unexpected value %v", value)
	}

	current = current.Add(2 * time.Minute)
	found, err = store.Get(ctx, "key", &value)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Fatal("expected expired entry to miss")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	type payload struct {
		Title string `json:"title"`
	}

	if err := store.Set(ctx, "videos.video.test", payload{Title: "hello"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	found, err := store.Get(ctx, "videos.video.test", &got)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if got.Title != "hello" {
		t.Fatalf("unexpected payload %+v", got)
	}

	if ttl := server.TTL("videos.video.test"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl got %s", ttl)
	}

	found, err = store.Get(ctx, "videos.video.missing", &got)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Fatal("expected miss for unknown key")
	}
}

func TestRedisStoreExpiredKeyMisses(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	server.FastForward(2 * time.Minute)

	var got string
	found, err := store.Get(ctx, "key", &got)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Fatal("expected miss after expiry")
	}
}

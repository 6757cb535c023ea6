package flood

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisLimiter(t *testing.T) {
	srv := miniredis.RunT(t)

	limiter := NewRedisLimiter(srv.Addr(), "", 0, 3, 10*time.Second)
	defer limiter.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, 100)
		if err != nil {
			t.Fatalf("Allow %d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("message %d should pass", i)
		}
	}

	ok, err := limiter.Allow(ctx, 100)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if ok {
		t.Error("message over the limit should be dropped")
	}

	// Other chats are counted independently.
	ok, err = limiter.Allow(ctx, 200)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !ok {
		t.Error("a different chat must have its own window")
	}

	if err := limiter.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestRedisLimiterWindowExpires(t *testing.T) {
	srv := miniredis.RunT(t)

	limiter := NewRedisLimiter(srv.Addr(), "", 0, 1, 10*time.Second)
	defer limiter.Close()
	ctx := context.Background()

	if ok, _ := limiter.Allow(ctx, 100); !ok {
		t.Fatal("first message should pass")
	}
	if ok, _ := limiter.Allow(ctx, 100); ok {
		t.Fatal("second message should be dropped")
	}

	// The counter key carries a TTL so a stuck window cannot deny forever.
	srv.FastForward(11 * time.Second)
	keys := srv.Keys()
	if len(keys) != 0 {
		t.Errorf("expected counter keys to expire, still present: %v", keys)
	}
}

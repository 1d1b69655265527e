package cache

import (
	"context"
	"testing"
	"time"
)

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](0)
	defer c.Close()

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set(ctx, "gas", 42, time.Second)
	c.Set(ctx, "decimals", 18, 0)

	if v, ok := c.Get(ctx, "gas"); !ok || v != 42 {
		t.Fatalf("Get(gas) = %d, %v; want 42, true", v, ok)
	}

	now = now.Add(2 * time.Second)

	if _, ok := c.Get(ctx, "gas"); ok {
		t.Error("expected gas entry to be expired")
	}
	if v, ok := c.Get(ctx, "decimals"); !ok || v != 18 {
		t.Errorf("Get(decimals) = %d, %v; want 18, true", v, ok)
	}
}

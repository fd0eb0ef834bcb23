package cache

import (
	"testing"
	"time"
)

func TestTTLSetGet(t *testing.T) {
	c := NewTTL[string](time.Minute)
	c.Set("a", "one")

	got, ok := c.Get("a")
	if !ok || got != "one" {
		t.Fatalf("expected one, got %q ok=%v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL[int](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", 42)

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry expired too early")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not dropped, len=%d", c.Len())
	}
}

func TestTTLDeleteAndClear(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted key still present")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestTTLSetResetsLifetime(t *testing.T) {
	c := NewTTL[int](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", 1)

	c.now = func() time.Time { return base.Add(50 * time.Second) }
	c.Set("k", 2)

	c.now = func() time.Time { return base.Add(100 * time.Second) }
	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Fatalf("reset lifetime lost entry: %d ok=%v", got, ok)
	}
}

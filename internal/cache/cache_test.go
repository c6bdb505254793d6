package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New(Options{})

	c.Set("greeting", "hello")
	got, ok := c.Get("greeting")
	if !ok {
		t.Fatal("Get(greeting) missed after Set")
	}
	if got != "hello" {
		t.Errorf("Get(greeting) = %v, want hello", got)
	}

	if _, ok := c.Get("absent"); ok {
		t.Error("Get(absent) should miss")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(Options{TTL: time.Minute})

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("k", 42)

	// Just inside the TTL.
	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	// Just past it: purged on read, counted as a miss.
	c.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry survived past its TTL")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %d hits, %d misses; want 1 and 1", stats.Hits, stats.Misses)
	}
	if stats.MemoryItems != 0 {
		t.Errorf("expired entry not purged, %d items remain", stats.MemoryItems)
	}
}

func TestSetWithTTLZeroNeverExpires(t *testing.T) {
	c := New(Options{})

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.SetWithTTL("pinned", "v", 0)

	c.now = func() time.Time { return base.Add(1000 * time.Hour) }
	if _, ok := c.Get("pinned"); !ok {
		t.Error("zero-TTL entry should never expire")
	}
}

func TestEvictionBoundsMemory(t *testing.T) {
	c := New(Options{MaxMemoryItems: 10})

	for i := 0; i < 25; i++ {
		c.Set(fmt.Sprintf("key-%02d", i), i)
	}

	if items := c.Stats().MemoryItems; items > 10 {
		t.Errorf("memory items = %d, want <= 10", items)
	}
}

func TestEvictionPrefersColdEntries(t *testing.T) {
	c := New(Options{MaxMemoryItems: 10})

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("key-%02d", i), i)
	}
	// Warm up everything except key-03.
	for i := 0; i < 10; i++ {
		if i == 3 {
			continue
		}
		c.Get(fmt.Sprintf("key-%02d", i))
	}

	// Overflow by one; the cold entry goes first.
	c.Set("key-10", 10)

	if _, ok := c.Get("key-03"); ok {
		t.Error("cold entry key-03 should have been evicted")
	}
	if _, ok := c.Get("key-10"); !ok {
		t.Error("fresh entry key-10 should survive eviction")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(Options{})

	c.Set("k", "v")
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("invalidated entry still readable")
	}
}

func TestClear(t *testing.T) {
	c := New(Options{})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if items := c.Stats().MemoryItems; items != 0 {
		t.Errorf("memory items after Clear = %d, want 0", items)
	}
}

func TestStatsHitRate(t *testing.T) {
	c := New(Options{})

	if rate := c.Stats().HitRate; rate != 0 {
		t.Errorf("hit rate with no requests = %v, want 0", rate)
	}

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats.TotalRequests != 3 {
		t.Errorf("total requests = %d, want 3", stats.TotalRequests)
	}
	want := 2.0 / 3.0
	if stats.HitRate < want-0.001 || stats.HitRate > want+0.001 {
		t.Errorf("hit rate = %v, want ~%v", stats.HitRate, want)
	}
}

func TestPersistentTierRoundTrip(t *testing.T) {
	dir := t.TempDir()

	first := New(Options{Dir: dir})
	if first.persist == nil {
		t.Fatal("persistent tier failed to open")
	}
	first.Set("durable", "value")
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A fresh cache over the same directory serves the entry from disk
	// and promotes it into memory.
	second := New(Options{Dir: dir})
	defer second.Close()

	got, ok := second.Get("durable")
	if !ok {
		t.Fatal("persisted entry not found by fresh cache")
	}
	if got != "value" {
		t.Errorf("persisted value = %v, want value", got)
	}
	if items := second.Stats().MemoryItems; items != 1 {
		t.Errorf("promoted entries in memory = %d, want 1", items)
	}
}

func TestPersistentTierClear(t *testing.T) {
	dir := t.TempDir()

	first := New(Options{Dir: dir})
	first.Set("k", "v")
	first.Clear()
	first.Close()

	second := New(Options{Dir: dir})
	defer second.Close()
	if _, ok := second.Get("k"); ok {
		t.Error("cleared entry still present in persistent tier")
	}
}

package embedding

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewCache(10, time.Minute)

	if _, ok := c.Get("query"); ok {
		t.Error("unexpected hit on empty cache")
	}

	c.Put("query", []float32{1, 2, 3})

	vec, ok := c.Get("query")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("got %v", vec)
	}

	if _, ok := c.Get("other query"); ok {
		t.Error("hit for a different query")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewCache(10, time.Nanosecond)
	c.Put("query", []float32{1})

	time.Sleep(time.Millisecond)

	if _, ok := c.Get("query"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted, len = %d", c.Len())
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("q%d", i), []float32{float32(i)})
	}

	// Touch q0 so q1 becomes the eviction candidate.
	if _, ok := c.Get("q0"); !ok {
		t.Fatal("expected q0 hit")
	}

	c.Put("q3", []float32{3})

	if _, ok := c.Get("q1"); ok {
		t.Error("q1 should have been evicted")
	}
	if _, ok := c.Get("q0"); !ok {
		t.Error("recently used q0 evicted")
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

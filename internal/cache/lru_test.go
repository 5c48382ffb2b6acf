package cache

import "testing"

func TestGetMiss(t *testing.T) {
	c := NewLRU[uint64, string](4)
	if _, ok := c.Get(1); ok {
		t.Error("Expected miss on empty cache")
	}
	hits, misses := c.Metrics()
	if hits != 0 || misses != 1 {
		t.Errorf("Expected 0 hits / 1 miss, got %d/%d", hits, misses)
	}
}

func TestPutGet(t *testing.T) {
	c := NewLRU[uint64, string](4)
	c.Put(7, "seven")
	v, ok := c.Get(7)
	if !ok || v != "seven" {
		t.Errorf("Expected hit with 'seven', got %q ok=%v", v, ok)
	}
	hits, _ := c.Metrics()
	if hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
}

func TestEvictionOrder(t *testing.T) {
	c := NewLRU[int, int](3)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3)

	// Touch 1 so 2 becomes the oldest.
	c.Get(1)
	c.Put(4, 4)

	if _, ok := c.Get(2); ok {
		t.Error("Expected 2 to be evicted as least recently used")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Expected %d to survive eviction", k)
		}
	}
}

func TestPutRefreshesExisting(t *testing.T) {
	c := NewLRU[int, string](2)
	c.Put(1, "a")
	c.Put(1, "b")
	if c.Len() != 1 {
		t.Errorf("Refreshing a key must not grow the cache, len=%d", c.Len())
	}
	if v, _ := c.Get(1); v != "b" {
		t.Errorf("Expected refreshed value 'b', got %q", v)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := NewLRU[int, int](4)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Remove(1)
	if _, ok := c.Get(1); ok {
		t.Error("Expected 1 removed")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, len=%d", c.Len())
	}
	if _, ok := c.Get(2); ok {
		t.Error("Expected 2 gone after Clear")
	}
}

func TestResizeEvicts(t *testing.T) {
	c := NewLRU[int, int](4)
	for i := 1; i <= 4; i++ {
		c.Put(i, i)
	}
	c.Resize(2)
	if c.Len() != 2 {
		t.Fatalf("Expected 2 entries after shrink, got %d", c.Len())
	}
	// The two most recently inserted survive.
	for _, k := range []int{3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Expected %d to survive resize", k)
		}
	}
}

func TestNonPositiveCapacityFallsBack(t *testing.T) {
	c := NewLRU[int, int](0)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Expected default capacity %d, got %d", DefaultCapacity, c.Capacity())
	}
}

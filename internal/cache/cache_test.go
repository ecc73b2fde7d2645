package cache

import (
	"sync"
	"testing"
)

func constant(v int) func() int { return func() int { return v } }

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	createCalled := 0

	val := c.GetOrCreate("key1", func() int {
		createCalled++
		return 100
	})
	if val != 100 || createCalled != 1 {
		t.Fatalf("first call: val=%d calls=%d", val, createCalled)
	}

	val = c.GetOrCreate("key1", func() int {
		createCalled++
		return 200
	})
	if val != 100 || createCalled != 1 {
		t.Errorf("second call: val=%d calls=%d, want cached 100", val, createCalled)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, string](3)
	create := func(s string) func() string { return func() string { return s } }

	c.GetOrCreate(1, create("a"))
	c.GetOrCreate(2, create("b"))
	c.GetOrCreate(3, create("c"))
	c.GetOrCreate(1, create("x")) // 2 is now the oldest
	c.GetOrCreate(4, create("d"))

	if got := c.GetOrCreate(2, create("b2")); got != "b2" {
		t.Errorf("key 2 = %q, want it recreated after eviction", got)
	}
	if got := c.GetOrCreate(1, create("x")); got != "a" {
		t.Errorf("key 1 = %q, want the cached a", got)
	}
	if s := c.Stats(); s.Evictions != 2 || s.Len != 3 {
		t.Errorf("evictions=%d len=%d, want 2/3", s.Evictions, s.Len)
	}
}

func TestCacheStats(t *testing.T) {
	c := New[int, int](1)
	c.GetOrCreate(1, constant(1))
	c.GetOrCreate(1, constant(1))
	c.GetOrCreate(2, constant(2))

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 2 {
		t.Errorf("hits=%d misses=%d, want 1/2", s.Hits, s.Misses)
	}
	if s.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", s.Evictions)
	}
	if want := 1.0 / 3; s.HitRate != want {
		t.Errorf("hit rate = %v, want %v", s.HitRate, want)
	}
	if s.Capacity != 1 || s.Len != 1 {
		t.Errorf("capacity=%d len=%d", s.Capacity, s.Len)
	}
}

func TestCacheUnlimited(t *testing.T) {
	c := New[int, int](0)
	for i := range 100 {
		c.GetOrCreate(i, constant(i))
	}
	if s := c.Stats(); s.Len != 100 || s.Evictions != 0 {
		t.Errorf("len=%d evictions=%d, want 100/0", s.Len, s.Evictions)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := (g*31 + i) % 40
				if v := c.GetOrCreate(k, func() int { return k * 2 }); v != k*2 {
					t.Errorf("key %d = %d", k, v)
				}
			}
		}(g)
	}
	wg.Wait()
	if s := c.Stats(); s.Len > 16 || s.Hits+s.Misses != 1600 {
		t.Errorf("len=%d lookups=%d, want <=16 and 1600", s.Len, s.Hits+s.Misses)
	}
}

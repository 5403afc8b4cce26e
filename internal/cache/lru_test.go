package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *time.Time) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](size, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("a = %q %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, now := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	*now = now.Add(2 * time.Minute)
	c.Set("c", "3")

	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestPurge(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("size after purge = %d", c.Size())
	}
	c.Set("a", "3")
	if v, _ := c.Get("a"); v != "3" {
		t.Fatalf("cache unusable after purge")
	}
}

func TestGetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() < 1 || calls.Load() > int32(len(results)) {
		t.Fatalf("unexpected load count %d", calls.Load())
	}
	for _, v := range results {
		if v != 42 {
			t.Fatalf("got %d", v)
		}
	}

	// Cached now; loader not called again.
	before := calls.Load()
	if v, _ := c.GetOrLoad("k", func() (int, error) { return 0, errors.New("unreachable") }); v != 42 {
		t.Fatalf("cached value = %d", v)
	}
	if calls.Load() != before {
		t.Fatal("loader called for a cached key")
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	if _, err := c.GetOrLoad("k", func() (int, error) { return 0, errors.New("boom") }); err == nil {
		t.Fatal("expected error")
	}
	if c.Size() != 0 {
		t.Fatal("error result was cached")
	}
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c, now := newTestCache(10, time.Second)
	c.Set("a", "1")
	*now = now.Add(time.Minute)

	m := NewManager()
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll = %d", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

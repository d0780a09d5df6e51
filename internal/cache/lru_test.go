// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUAddGet(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	now := time.Now()
	c.Add("msg-1", now)

	got, ok := c.Get("msg-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if !got.Equal(now) {
		t.Errorf("got %v, want %v", got, now)
	}

	if _, ok := c.Get("msg-2"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	c.Add("a", time.Now())
	c.Add("b", time.Now())
	c.Add("c", time.Now())

	// Touch "a" so "b" becomes the oldest.
	c.Get("a")

	c.Add("d", time.Now())

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if c.Contains("b") {
		t.Error("least recently used entry should have been evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if !c.Contains(key) {
			t.Errorf("key %q missing after eviction", key)
		}
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Add("k", time.Now())
	time.Sleep(20 * time.Millisecond)

	if c.Contains("k") {
		t.Error("Contains should report expired entry as absent")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Get should miss on expired entry")
	}
}

func TestLRUIsDuplicate(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	if c.IsDuplicate("msg-1") {
		t.Error("first sight must not be a duplicate")
	}
	if !c.IsDuplicate("msg-1") {
		t.Error("second sight must be a duplicate")
	}
	if c.IsDuplicate("msg-2") {
		t.Error("different key must not be a duplicate")
	}
}

func TestLRUIsDuplicateAfterExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.IsDuplicate("msg-1")
	time.Sleep(20 * time.Millisecond)

	if c.IsDuplicate("msg-1") {
		t.Error("expired key must be treated as new")
	}
}

func TestLRURemove(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Add("k", time.Now())
	if !c.Remove("k") {
		t.Error("Remove should report the key was present")
	}
	if c.Remove("k") {
		t.Error("second Remove should report absence")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
}

func TestLRUClear(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	for i := 0; i < 5; i++ {
		c.Add(fmt.Sprintf("k%d", i), time.Now())
	}
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("len after Clear = %d, want 0", c.Len())
	}
	// The list sentinels survive a Clear.
	c.Add("k", time.Now())
	if !c.Contains("k") {
		t.Error("cache unusable after Clear")
	}
}

func TestLRUCleanupExpired(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Add("a", time.Now())
	c.Add("b", time.Now())
	time.Sleep(20 * time.Millisecond)
	c.Add("c", time.Now())

	removed := c.CleanupExpired()
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestLRUDefaults(t *testing.T) {
	c := NewLRUCache(0, 0)
	if c.capacity != 10000 {
		t.Errorf("default capacity = %d, want 10000", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("default ttl = %v, want 5m", c.ttl)
	}
}

func TestLRUStats(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Add("k", time.Now())
	c.Get("k")
	c.Get("absent")

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("stats = (%d, %d, %d), want (1, 1, 1)", hits, misses, size)
	}
}

func TestLRUConcurrentDedup(t *testing.T) {
	c := NewLRUCache(1000, time.Minute)

	var wg sync.WaitGroup
	var firsts sync.Map
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("msg-%d", j)
				if !c.IsDuplicate(key) {
					if _, loaded := firsts.LoadOrStore(key, true); loaded {
						t.Errorf("key %q claimed first twice", key)
					}
				}
			}
		}()
	}
	wg.Wait()
}

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

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("decision:alice:streams:read", true)

	got, ok := c.Get("decision:alice:streams:read")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != true {
		t.Errorf("got %v, want true", got)
	}

	if _, ok := c.Get("decision:bob:streams:read"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", c.Len())
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	c := New(time.Hour)

	c.SetWithTTL("short", "v", 10*time.Millisecond)
	c.Set("long", "v")

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("short-TTL entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default-TTL entry should survive")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute)

	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry still present")
	}

	// Deleting an absent key is a no-op.
	c.Delete("absent")
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("len after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("entry survived Clear")
	}
}

func TestCacheStats(t *testing.T) {
	c := New(time.Minute)

	c.Set("k", "v")
	c.Get("k")      // hit
	c.Get("absent") // miss
	c.Get("k")      // hit

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("misses = %d, want 1", stats.Misses)
	}
	if stats.TotalKeys != 1 {
		t.Errorf("total keys = %d, want 1", stats.TotalKeys)
	}

	rate := c.HitRate()
	if rate < 66.0 || rate > 67.0 {
		t.Errorf("hit rate = %.2f, want ~66.67", rate)
	}
}

func TestCacheHitRateEmpty(t *testing.T) {
	c := New(time.Minute)
	if rate := c.HitRate(); rate != 0.0 {
		t.Errorf("hit rate with no lookups = %.2f, want 0", rate)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n)
				c.Get(key)
				if j%25 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()
}

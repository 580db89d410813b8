package ratelimiter_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/canteenlab/jukebox/internal/ratelimiter"
)

func TestSlidingWindow_AllowsUpToMax(t *testing.T) {
	l := ratelimiter.New(5*time.Second, 2)

	for i := 0; i < 2; i++ {
		if !l.Allow("u1") {
			t.Fatalf("submission %d should be allowed", i+1)
		}
		l.Record("u1")
	}

	if l.Allow("u1") {
		t.Fatal("3rd submission inside the window should be rejected")
	}
}

func TestSlidingWindow_AllowDoesNotConsumeBudget(t *testing.T) {
	l := ratelimiter.New(5*time.Second, 2)

	// Repeated Allow calls without Record must not use up the budget.
	for i := 0; i < 10; i++ {
		if !l.Allow("u1") {
			t.Fatal("Allow alone should never consume budget")
		}
	}
}

func TestSlidingWindow_RecoversAfterWindow(t *testing.T) {
	l := ratelimiter.New(50*time.Millisecond, 2)

	l.Record("u1")
	l.Record("u1")
	if l.Allow("u1") {
		t.Fatal("expected rejection at capacity")
	}

	time.Sleep(70 * time.Millisecond)

	if !l.Allow("u1") {
		t.Fatal("expected submission to be allowed after the window expired")
	}
}

func TestSlidingWindow_WindowSlidesOnRecord(t *testing.T) {
	l := ratelimiter.New(100*time.Millisecond, 2)

	l.Record("u1")
	time.Sleep(60 * time.Millisecond)
	// Second submission inside the window refreshes its start.
	l.Record("u1")
	time.Sleep(60 * time.Millisecond)

	// 120ms after the first submission but only 60ms after the second:
	// a fixed bucket would have reset, the sliding window has not.
	if l.Allow("u1") {
		t.Fatal("window should still be live measured from the most recent submission")
	}
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	l := ratelimiter.New(5*time.Second, 1)

	l.Record("u1")
	if l.Allow("u1") {
		t.Fatal("u1 should be at capacity")
	}
	if !l.Allow("u2") {
		t.Fatal("u2 should be unaffected by u1's budget")
	}
}

func TestSlidingWindow_SweepEvictsExpired(t *testing.T) {
	l := ratelimiter.New(10*time.Millisecond, 2)

	for i := 0; i < 5; i++ {
		l.Record(fmt.Sprintf("user-%d", i))
	}
	l.Record("fresh")

	if evicted := l.Sweep(time.Now()); evicted != 0 {
		t.Fatalf("nothing should be evicted while windows are live, got %d", evicted)
	}

	time.Sleep(20 * time.Millisecond)

	if evicted := l.Sweep(time.Now()); evicted != 6 {
		t.Fatalf("expected 6 evictions, got %d", evicted)
	}

	// Evicted submitters start from a clean window.
	if !l.Allow("user-0") {
		t.Fatal("expected a clean window after eviction")
	}
}

func TestSlidingWindow_ConcurrentAccess(t *testing.T) {
	l := ratelimiter.New(time.Second, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("user-%d", n%4)
			for j := 0; j < 100; j++ {
				if l.Allow(key) {
					l.Record(key)
				}
			}
		}(i)
	}
	wg.Wait()

	// Every key must be saturated afterwards.
	for i := 0; i < 4; i++ {
		if l.Allow(fmt.Sprintf("user-%d", i)) {
			t.Fatalf("user-%d should be at capacity", i)
		}
	}
}

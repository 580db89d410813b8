package ratelimiter

import (
	"hash/fnv"
	"sync"
	"time"
)

// window is the per-submitter admission state.
type window struct {
	count       int
	windowStart time.Time
}

// SlidingWindow limits each submitter to at most max submissions inside a
// sliding window. Recording a submission inside a live window refreshes
// its start, so the effective expiry always runs from the most recent
// submission. This is stricter than a fixed bucket, and intentional.
//
// State is process-local and rebuilt empty on restart; losing it only
// relaxes limits temporarily. A multi-instance deployment would need a
// shared store behind the same interface.
type SlidingWindow struct {
	window time.Duration
	max    int
	shards [shardCount]shard
}

// shard holds one slice of the key space under its own lock, so submitters
// hashing to different shards never contend. Calls for the same key always
// land on the same shard and therefore serialize, which closes the race
// where two submissions both observe count < max.
type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

const shardCount = 16

// New creates a SlidingWindow allowing max submissions per windowLen.
func New(windowLen time.Duration, max int) *SlidingWindow {
	l := &SlidingWindow{window: windowLen, max: max}
	for i := range l.shards {
		l.shards[i].windows = make(map[string]*window)
	}
	return l
}

// Allow reports whether the submitter may submit now. It does not consume
// budget; call Record after the submission actually commits, so rejected
// submissions never count against the submitter.
func (l *SlidingWindow) Allow(key string) bool {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return true
	}
	if time.Since(w.windowStart) > l.window {
		return true
	}
	return w.count < l.max
}

// Record counts a committed submission. An expired window resets to
// count 1; a live one increments and slides forward to now.
func (l *SlidingWindow) Record(key string) {
	now := time.Now()
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.windowStart) > l.window {
		s.windows[key] = &window{count: 1, windowStart: now}
		return
	}
	w.count++
	w.windowStart = now
}

// Sweep drops windows that expired before now and returns how many were
// evicted. Run periodically so the key map does not grow without bound.
func (l *SlidingWindow) Sweep(now time.Time) int {
	evicted := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for key, w := range s.windows {
			if now.Sub(w.windowStart) > l.window {
				delete(s.windows, key)
				evicted++
			}
		}
		s.mu.Unlock()
	}
	return evicted
}

func (l *SlidingWindow) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key)) //nolint:errcheck
	return &l.shards[h.Sum32()%shardCount]
}

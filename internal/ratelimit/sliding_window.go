// Package ratelimit admits at most N calls per caller within any trailing window W.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/protein-tracker/internal/domain"
)

// SlidingWindow is an in-process limiter keeping call timestamps per caller.
// A call at t stops counting once now-t >= window.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	calls  map[string][]time.Time
}

// NewSlidingWindow allows limit calls per caller in any trailing window
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		calls:  make(map[string][]time.Time),
	}
}

// WithClock replaces the time source, for tests
func (s *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	s.now = now
	return s
}

// Allow records the call when admitted. Rejected calls are not recorded.
func (s *SlidingWindow) Allow(_ context.Context, key string) (domain.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	live := s.evict(key, now)

	if len(live) >= s.limit {
		return domain.Decision{
			Allowed:    false,
			RetryAfter: live[0].Add(s.window).Sub(now),
		}, nil
	}

	s.calls[key] = append(live, now)
	return domain.Decision{Allowed: true}, nil
}

// evict drops expired timestamps for key and returns what is left, oldest first
func (s *SlidingWindow) evict(key string, now time.Time) []time.Time {
	calls := s.calls[key]
	i := 0
	for i < len(calls) && now.Sub(calls[i]) >= s.window {
		i++
	}
	live := calls[i:]
	s.calls[key] = live
	return live
}

// Prune forgets callers with no call inside the window and returns how many were dropped
func (s *SlidingWindow) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for key := range s.calls {
		if len(s.evict(key, now)) == 0 {
			delete(s.calls, key)
			dropped++
		}
	}
	return dropped
}

// RunPruner calls Prune every interval until ctx is done
func (s *SlidingWindow) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

// Callers reports how many callers are tracked
func (s *SlidingWindow) Callers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

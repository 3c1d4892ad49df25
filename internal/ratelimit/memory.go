package ratelimit

import (
	"context" // Store interface
	"sync"    // Guards the window map
	"time"    // Window bookkeeping
)

// MemoryStore keeps one fixed window counter per key in process memory.
// A window opens on the first request from a key and admits Max requests
// until it expires, matching RedisStore.
type MemoryStore struct {
	mu      sync.Mutex         // Guards windows
	tier    Tier               // Limits applied
	windows map[string]*window // Current window per client key
	idleTTL time.Duration      // Age after which a window is dropped
	now     func() time.Time   // Clock, replaced in tests
}

type window struct {
	start time.Time // First request of the window
	count int       // Requests seen in the window
}

// NewMemoryStore creates an in-process store for the tier
func NewMemoryStore(tier Tier) *MemoryStore {
	return &MemoryStore{
		tier:    tier,
		windows: make(map[string]*window),
		idleTTL: 2 * tier.Window,
		now:     time.Now,
	}
}

// Take implements Store
func (s *MemoryStore) Take(_ context.Context, key string) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.start.Add(s.tier.Window)) {
		w = &window{start: now} // Open a new window
		s.windows[key] = w
	}
	w.count++

	dec := Decision{Limit: s.tier.Max, Remaining: max(s.tier.Max-w.count, 0)}
	if w.count > s.tier.Max {
		dec.RetryAfter = w.start.Add(s.tier.Window).Sub(now) // Time left in the window
		return dec, nil
	}
	dec.Allowed = true
	return dec, nil
}

// Cleanup drops keys whose window ended more than one window ago
func (s *MemoryStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, w := range s.windows {
		if w.start.Before(cutoff) {
			delete(s.windows, k)
		}
	}
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// StartJanitor periodically removes idle keys until ctx is cancelled
func (s *MemoryStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every) // Cleanup interval
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return // Server shutting down
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

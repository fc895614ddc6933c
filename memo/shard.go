package memo

import (
	"sync"
	"time"

	"github.com/IvanBrykalov/memocache/internal/util"
)

// shard is an independent partition of the cache: one RWMutex guarding
// one key→value map. The map is accessed only while holding mu; whichever
// goroutine holds the lock owns the map for that duration, and no other
// access path exists.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu sync.RWMutex
	m  map[K]V

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_        util.CacheLinePad
	hits     util.PaddedAtomicInt64
	misses   util.PaddedAtomicInt64
	computes util.PaddedAtomicInt64
}

func newShard[K comparable, V any]() *shard[K, V] {
	return &shard[K, V]{m: make(map[K]V)}
}

// getOrCompute returns the resident value for k, running factory to
// produce it on first access.
//
// Locking protocol:
//  1. Fast path: under the read lock, return the value if resident.
//     Concurrent readers of this shard never block each other, and other
//     shards are untouched.
//  2. Miss: drop the read lock, take the write lock, and re-check the
//     map. Another goroutine may have computed and inserted the value
//     between the two acquisitions; if so, return it without recomputing.
//  3. Still absent: run factory while holding the write lock, insert on
//     success, return. Holding the lock across the factory call is what
//     coalesces concurrent requests: every later arrival for any key in
//     this shard blocks on mu and, for the same key, lands on the
//     re-check in step 2.
//
// A failed or panicking factory releases the lock (deferred unlock) and
// leaves the entry absent, so a later call may retry; unrelated keys in
// the shard are unaffected.
func (s *shard[K, V]) getOrCompute(k K, factory Factory[K, V], met Metrics) (V, error) {
	s.mu.RLock()
	if v, ok := s.m[k]; ok {
		s.mu.RUnlock()
		s.hits.Add(1)
		met.Hit()
		return v, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	// Re-check under the write lock: the value may have been inserted
	// between the RUnlock above and the Lock here.
	if v, ok := s.m[k]; ok {
		s.mu.Unlock()
		s.hits.Add(1)
		met.Hit()
		return v, nil
	}
	// The unlock is deferred from here on so a panicking factory cannot
	// leave the shard locked.
	defer s.mu.Unlock()

	s.misses.Add(1)
	met.Miss()
	s.computes.Add(1)

	start := time.Now()
	v, err := factory(k)
	met.Compute(err, time.Since(start))
	if err != nil {
		var zero V
		return zero, err
	}
	s.m[k] = v
	return v, nil
}

// peek returns the resident value for k without ever computing.
func (s *shard[K, V]) peek(k K, met Metrics) (V, bool) {
	s.mu.RLock()
	v, ok := s.m[k]
	s.mu.RUnlock()
	if ok {
		s.hits.Add(1)
		met.Hit()
	}
	return v, ok
}

// len returns the number of resident entries in this shard.
func (s *shard[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// stats accumulates this shard's counters into st.
func (s *shard[K, V]) stats(st *Stats) {
	st.Hits += s.hits.Load()
	st.Misses += s.misses.Load()
	st.Computes += s.computes.Load()
}

// Package memo provides a fast, generic, sharded memoization cache: a
// key→value store that computes each value at most once per key via a
// caller-supplied factory and serves every later request from memory.
//
// Design
//
//   - Concurrency: the cache is split into shards, each protected by an
//     RWMutex. The shard count is a power of two, chosen by a heuristic
//     (2×GOMAXPROCS rounded up) or fixed via Options.Shards. Keys routed
//     to different shards never block one another.
//
//   - Coalescing: on a miss, the factory runs while the shard's write
//     lock is held. Concurrent callers for the same key block on that
//     lock and find the value on the double-checked re-read, so the
//     factory runs at most once per key. The same lock also serializes
//     distinct keys that hash to the same shard; that false sharing is a
//     deliberate trade against per-key lock bookkeeping.
//
//   - Immutability: entries are never updated, expired, or evicted. A
//     value observed once is the value forever, for the life of the
//     instance. There is no TTL, no capacity limit, and no persistence;
//     if you need eviction this is the wrong package.
//
//   - Failure: a factory error (or panic) propagates to the caller and
//     leaves the entry absent, so a later Get retries. The shard lock is
//     released on every exit path; a failing key never poisons its shard.
//
//   - Hashing: the built-in hash covers strings, byte arrays, integer
//     types, and fmt.Stringer keys. Any other key type needs an explicit
//     Hasher (NewWithHasher), which is also the lever for deterministic
//     collision control in tests.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Compute signals.
//     NoopMetrics is the default; plug the Prometheus adapter from
//     metrics/prom to export them.
//
// Basic usage
//
//	c := memo.New[string, int](func(k string) (int, error) {
//	    return expensiveLookup(k) // runs once per distinct k
//	})
//	v, err := c.Get("answer")
//
// With a custom hasher
//
//	c := memo.NewWithHasher[string, int](
//	    func(k string) uint64 { return myHash(k) },
//	    factory,
//	)
//
// Thread-safety & complexity
//
// All methods on Cache are safe for concurrent use. A warm Get is one
// map lookup under a read lock; a cold Get additionally pays one factory
// invocation under the shard's write lock. While a factory runs, other
// keys in the same shard wait; keys in other shards do not.
package memo

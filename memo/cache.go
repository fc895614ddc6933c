package memo

import (
	"github.com/IvanBrykalov/memocache/internal/util"
)

// cache is a sharded memoization store wired to a user-supplied factory.
// All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	shards  []*shard[K, V]
	hash    Hasher[K]
	factory Factory[K, V]
	met     Metrics
}

// New constructs a cache with the built-in hash function and an automatic
// shard count (a power of two derived from GOMAXPROCS).
// It panics if factory is nil.
func New[K comparable, V any](factory Factory[K, V]) Cache[K, V] {
	return NewWithOptions(factory, Options[K]{})
}

// NewWithHasher constructs a cache with an explicit hash function.
// Use it when the built-in hash does not support the key type, or to
// control deterministically which keys share a shard.
// It panics if factory or hasher is nil.
func NewWithHasher[K comparable, V any](hasher Hasher[K], factory Factory[K, V]) Cache[K, V] {
	if hasher == nil {
		panic("memo: nil Hasher")
	}
	return NewWithOptions(factory, Options[K]{Hasher: hasher})
}

// NewWithOptions constructs a cache with the provided Options.
// Defaults:
//   - Shards <= 0  -> auto, a power of two derived from GOMAXPROCS
//   - nil Hasher   -> built-in fast non-crypto hash
//   - nil Metrics  -> NoopMetrics
//
// It panics if factory is nil.
func NewWithOptions[K comparable, V any](factory Factory[K, V], opt Options[K]) Cache[K, V] {
	if factory == nil {
		panic("memo: nil Factory")
	}
	if opt.Hasher == nil {
		opt.Hasher = util.DefaultHash[K]
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	// number of shards -> power of two (fixed for the cache's lifetime)
	sh := opt.Shards
	if sh <= 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}

	cs := make([]*shard[K, V], sh)
	for i := range cs {
		cs[i] = newShard[K, V]()
	}

	// return pointer-to-impl as the interface (avoids unexported-return lint)
	return &cache[K, V]{
		shards:  cs,
		hash:    opt.Hasher,
		factory: factory,
		met:     opt.Metrics,
	}
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k, computing it via the factory on first
// access. The factory runs at most once per key; concurrent callers for
// the same key block on the shard lock and observe the single result.
func (c *cache[K, V]) Get(k K) (V, error) {
	return c.getShard(k).getOrCompute(k, c.factory, c.met)
}

// Peek returns the value for k only if already resident; it never
// invokes the factory.
func (c *cache[K, V]) Peek(k K) (V, bool) {
	return c.getShard(k).peek(k, c.met)
}

// Len returns the total number of resident entries across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// Stats returns a snapshot of the aggregated per-shard counters.
// The snapshot is not atomic across shards; counters may advance while
// it is being taken.
func (c *cache[K, V]) Stats() Stats {
	var st Stats
	for _, s := range c.shards {
		s.stats(&st)
	}
	return st
}

// ---- helpers ----

// getShard picks a shard from the low bits of the key hash.
// len(c.shards) is guaranteed to be a power of two, so routing is a mask.
// Identical keys always route to the identical shard; no lock is ever
// held across more than one shard.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}

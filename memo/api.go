package memo

// Factory computes the value for a key on first access. It must be
// deterministic per key: every invocation for a given k must produce an
// equivalent value. The cache may invoke it from any goroutine, so any
// state the factory closes over must be safe for concurrent use.
//
// The cache itself performs no I/O; factories typically do (network
// fetches, parsing, expensive derivations).
type Factory[K comparable, V any] func(k K) (V, error)

// Hasher maps a key to a 64-bit hash used for shard routing.
// It must be deterministic: identical keys always produce identical
// hashes. Distinct keys may legitimately alias to the same shard.
type Hasher[K comparable] func(k K) uint64

// Cache is a sharded memoization cache. All methods are safe for
// concurrent use by multiple goroutines.
//
// Entries are created lazily on first Get and are never updated or
// removed for the life of the instance.
type Cache[K comparable, V any] interface {
	// Get returns the value for k, computing it via the Factory first if
	// necessary. After the first successful computation every call
	// returns the same value without re-invoking the Factory.
	// Get may block while the relevant shard's lock is held by another
	// caller (including for the full duration of that caller's Factory
	// invocation).
	Get(k K) (V, error)

	// Peek returns the value for k only if it is already resident.
	// It never invokes the Factory.
	Peek(k K) (V, bool)

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Stats returns a snapshot of the cache's internal counters.
	Stats() Stats
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits     int64 // Get/Peek calls answered from a resident entry
	Misses   int64 // Get calls that reached the compute path
	Computes int64 // Factory invocations (including failed ones)
}

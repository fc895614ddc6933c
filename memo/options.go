package memo

// Options configures the cache. Zero values are safe; defaults are
// applied in NewWithOptions:
//   - Shards <= 0  => auto (ReasonableShardCount, a power of two)
//   - nil Hasher   => the built-in fast non-cryptographic hash
//   - nil Metrics  => NoopMetrics
type Options[K comparable] struct {
	// Shards is the number of independently locked partitions. If > 0 it
	// is rounded up to the next power of two; the count is fixed at
	// construction and never resized. More shards reduce the chance that
	// two unrelated keys serialize on the same lock.
	Shards int

	// Hasher overrides the key hash used for shard routing. Supplying a
	// hasher gives deterministic control over which keys collide, which
	// matters mostly for testing and for key types the built-in hash
	// does not support.
	Hasher Hasher[K]

	// Metrics receives hit/miss/compute signals. Nil => NoopMetrics.
	Metrics Metrics
}

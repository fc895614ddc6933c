// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// DefaultHash hashes common key types to 64 bits for shard routing.
// String and byte-array keys go through xxhash (fast, non-cryptographic,
// well distributed); integer keys go through a splitmix64 finalizer, which
// is cheaper than feeding 8 bytes to xxhash and spreads sequential keys
// across the whole hash space. fmt.Stringer is a last-resort fallback.
// Panicking on unsupported key types is deliberate to avoid silently poor
// sharding; supply a Hasher upstream for such keys.
func DefaultHash[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	case uint8:
		return Mix64(uint64(v))
	case uint16:
		return Mix64(uint64(v))
	case uint32:
		return Mix64(uint64(v))
	case uint64:
		return Mix64(v)
	case uint:
		return Mix64(uint64(v))
	case uintptr:
		return Mix64(uint64(v))
	case int8:
		return Mix64(uint64(uint8(v)))
	case int16:
		return Mix64(uint64(uint16(v)))
	case int32:
		return Mix64(uint64(uint32(v)))
	case int64:
		return Mix64(uint64(v))
	case int:
		return Mix64(uint64(v))

	// Fallback for pseudo-keys via String() (avoid if you can).
	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.DefaultHash: unsupported key type %T; provide a custom Hasher", k))
	}
}

// Mix64 is the splitmix64 finalizer: a bijective mix that turns dense
// integer keys into well-distributed 64-bit hashes.
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

package memo

import (
	"strings"
	"sync/atomic"
	"testing"
)

// Fuzz the memoization contract under arbitrary string keys.
// Guards against panics in the hash/routing path and ensures the
// compute-once and value-stability invariants hold for any input.
// NOTE: key/value lengths are capped to keep fuzzing memory bounded
// (this does not weaken the invariants we check).
func FuzzCache_GetPeek(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, suffix string) {
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(suffix) > limit {
			suffix = suffix[:limit]
		}

		var calls int64
		c := New[string, string](func(key string) (string, error) {
			atomic.AddInt64(&calls, 1)
			return key + "|" + suffix, nil
		})

		want := k + "|" + suffix

		// Cold Get computes; warm Get and Peek agree with it.
		if got, err := c.Get(k); err != nil || got != want {
			t.Fatalf("cold Get: %q, %v", got, err)
		}
		if got, ok := c.Peek(k); !ok || got != want {
			t.Fatalf("Peek: %q ok=%v", got, ok)
		}
		if got, err := c.Get(k); err != nil || got != want {
			t.Fatalf("warm Get: %q, %v", got, err)
		}

		if n := atomic.LoadInt64(&calls); n != 1 {
			t.Fatalf("factory ran %d times for one key", n)
		}
		if c.Len() != 1 {
			t.Fatalf("Len = %d, want 1", c.Len())
		}
	})
}

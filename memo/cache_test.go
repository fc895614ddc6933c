package memo

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Basic memoization semantics: the factory runs once per distinct key and
// the first value sticks.
func TestCache_GetMemoizes(t *testing.T) {
	t.Parallel()

	var calls int64
	c := New[string, string](func(k string) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v:" + k, nil
	})

	for i := 0; i < 3; i++ {
		v, err := c.Get("a")
		if err != nil || v != "v:a" {
			t.Fatalf("Get a: v=%q err=%v", v, err)
		}
	}
	if v, err := c.Get("b"); err != nil || v != "v:b" {
		t.Fatalf("Get b: v=%q err=%v", v, err)
	}

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("factory must run once per key, got %d calls", got)
	}
	if got := c.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
}

// Peek must never trigger a computation.
func TestCache_PeekDoesNotCompute(t *testing.T) {
	t.Parallel()

	var calls int64
	c := New[string, int](func(string) (int, error) {
		atomic.AddInt64(&calls, 1)
		return 7, nil
	})

	if _, ok := c.Peek("a"); ok {
		t.Fatal("Peek on empty cache reported a hit")
	}
	if got := atomic.LoadInt64(&calls); got != 0 {
		t.Fatalf("Peek invoked the factory %d times", got)
	}

	if _, err := c.Get("a"); err != nil {
		t.Fatal(err)
	}
	if v, ok := c.Peek("a"); !ok || v != 7 {
		t.Fatalf("Peek after Get: v=%v ok=%v", v, ok)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("factory ran %d times, want 1", got)
	}
}

// A failed computation leaves the entry absent; the next Get retries and
// can succeed. Unrelated keys in the same shard are unaffected.
func TestCache_ErrorLeavesEntryAbsent(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	var calls int64
	// Constant hasher: every key lands in shard 0, so a failure for one
	// key is exercised against neighbours in the same shard.
	c := NewWithHasher[string, int](
		func(string) uint64 { return 0 },
		func(k string) (int, error) {
			n := atomic.AddInt64(&calls, 1)
			if k == "bad" && n == 1 {
				return 0, errBoom
			}
			return len(k), nil
		},
	)

	if _, err := c.Get("bad"); !errors.Is(err, errBoom) {
		t.Fatalf("first Get: err=%v, want errBoom", err)
	}
	if _, ok := c.Peek("bad"); ok {
		t.Fatal("failed entry must stay absent")
	}

	// Other keys in the shard still compute normally.
	if v, err := c.Get("neighbour"); err != nil || v != len("neighbour") {
		t.Fatalf("neighbour: v=%v err=%v", v, err)
	}

	// Retry succeeds and is then memoized.
	if v, err := c.Get("bad"); err != nil || v != 3 {
		t.Fatalf("retry: v=%v err=%v", v, err)
	}
	if v, err := c.Get("bad"); err != nil || v != 3 {
		t.Fatalf("after retry: v=%v err=%v", v, err)
	}
	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Fatalf("factory ran %d times, want 3 (fail, neighbour, retry)", got)
	}
}

// A panicking factory must release the shard lock and leave the entry
// absent: the same key can be retried and other keys proceed.
func TestCache_PanicDoesNotPoisonShard(t *testing.T) {
	t.Parallel()

	var calls int64
	c := NewWithHasher[string, int](
		func(string) uint64 { return 0 }, // single shard for everything
		func(k string) (int, error) {
			if atomic.AddInt64(&calls, 1) == 1 {
				panic("factory exploded")
			}
			return 1, nil
		},
	)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic must propagate to the Get caller")
			}
		}()
		_, _ = c.Get("a")
	}()

	if _, ok := c.Peek("a"); ok {
		t.Fatal("entry must stay absent after a panic")
	}

	// The shard lock must have been released: both a different key and a
	// retry of the panicking key complete. Run with a watchdog so a held
	// lock fails the test instead of hanging it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if v, err := c.Get("b"); err != nil || v != 1 {
			t.Errorf("Get b after panic: v=%v err=%v", v, err)
		}
		if v, err := c.Get("a"); err != nil || v != 1 {
			t.Errorf("retry after panic: v=%v err=%v", v, err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shard appears locked after factory panic")
	}
}

// Any number of concurrent Gets for one key result in exactly one factory
// invocation, with every caller observing the same value.
func TestCache_SingleFlight(t *testing.T) {
	var calls int64
	c := New[string, string](func(k string) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(5 * time.Millisecond) // simulate I/O
		return "v:" + k, nil
	})

	const N = 64
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			v, err := c.Get("k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("factory must run exactly once, got %d", got)
	}
	if st := c.Stats(); st.Computes != 1 || st.Misses != 1 {
		t.Fatalf("stats: %+v", st)
	}
}

// Concurrent Gets across many distinct keys: one factory call per key.
func TestCache_ManyKeysComputeOnceEach(t *testing.T) {
	var calls int64
	c := New[string, int](func(k string) (int, error) {
		atomic.AddInt64(&calls, 1)
		n, err := strconv.Atoi(k)
		return n * n, err
	})

	const keys = 128
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < keys; i++ {
				v, err := c.Get(strconv.Itoa(i))
				if err != nil {
					return err
				}
				if v != i*i {
					return fmt.Errorf("key %d: got %d", i, v)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != keys {
		t.Fatalf("factory calls = %d, want %d", got, keys)
	}
	if got := c.Len(); got != keys {
		t.Fatalf("Len = %d, want %d", got, keys)
	}
}

func TestCache_NilFactoryPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("New with nil factory must panic")
		}
	}()
	_ = New[string, int](nil)
}

func TestCache_ShardsRoundedToPowerOfTwo(t *testing.T) {
	t.Parallel()

	// An awkward shard count still yields correct routing for every key.
	c := NewWithOptions(
		func(k int) (int, error) { return -k, nil },
		Options[int]{Shards: 7}, // rounds up to 8
	)
	for i := 0; i < 100; i++ {
		if v, err := c.Get(i); err != nil || v != -i {
			t.Fatalf("Get %d: v=%v err=%v", i, v, err)
		}
	}
	if got := c.Len(); got != 100 {
		t.Fatalf("Len = %d, want 100", got)
	}
}

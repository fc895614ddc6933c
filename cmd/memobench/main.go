// Command memobench runs a synthetic memoization workload against the cache
// and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/memocache/memo"
	pmet "github.com/IvanBrykalov/memocache/metrics/prom"
)

var errSynthetic = errors.New("synthetic factory failure")

func main() {
	// ---- Flags ----
	var (
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")
		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		latency = flag.Duration("latency", 0, "simulated factory latency per computation")
		failPct = flag.Int("fail", 0, "factory failure percentage [0..100]")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", "", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	var metrics memo.Metrics = memo.NoopMetrics{}
	if *metricsAddr != "" {
		metrics = pmet.New(nil, "memo", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	// ---- Build cache ----
	// The factory simulates the expensive work being memoized: optional
	// sleep plus a deterministic derived value. Failures are keyed off a
	// per-key RNG so a "failing" key eventually succeeds on retry.
	var factoryCalls uint64
	factoryLatency := *latency
	failPctVal := *failPct
	factory := func(k string) (string, error) {
		atomic.AddUint64(&factoryCalls, 1)
		if factoryLatency > 0 {
			time.Sleep(factoryLatency)
		}
		if failPctVal > 0 {
			// Hash-free per-call coin flip; contention here is irrelevant.
			if rand.Intn(100) < failPctVal {
				return "", errSynthetic
			}
		}
		return "v:" + k, nil
	}
	c := memo.NewWithOptions(factory, memo.Options[string]{
		Shards:  *shards,
		Metrics: metrics,
	})

	// ---- Snapshot flags for goroutines ----
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var total, failures uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				if _, err := c.Get(k); err != nil {
					atomic.AddUint64(&failures, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	fails := atomic.LoadUint64(&failures)
	calls := atomic.LoadUint64(&factoryCalls)
	st := c.Stats()

	hitRate := 0.0
	if ops > 0 {
		hitRate = float64(st.Hits) / float64(ops) * 100
	}

	fmt.Printf("shards=%d workers=%d keys=%d dur=%v seed=%d latency=%v fail=%d%%\n",
		*shards, workersN, *keys, elapsed, seedBase, factoryLatency, failPctVal)
	fmt.Printf("ops=%d (%.0f ops/s)  factory-calls=%d  failed-gets=%d\n",
		ops, float64(ops)/elapsed.Seconds(), calls, fails)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", st.Hits, st.Misses, hitRate)
	fmt.Printf("Len()=%d\n", c.Len())

	// Sanity: with no injected failures, every resident entry corresponds
	// to exactly one factory call.
	if failPctVal == 0 && calls != uint64(c.Len()) {
		log.Fatalf("memoization violated: %d factory calls for %d entries", calls, c.Len())
	}
}

package memo

import "time"

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	// Hit is called when Get or Peek finds a resident entry.
	Hit()
	// Miss is called when Get reaches the compute path.
	Miss()
	// Compute is called once per Factory invocation with its outcome and
	// duration. err == nil implies a new entry became resident.
	Compute(err error, dur time.Duration)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                         {}
func (NoopMetrics) Miss()                        {}
func (NoopMetrics) Compute(error, time.Duration) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}

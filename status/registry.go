package status

import "sync/atomic"

// Registry holds the monitor's live counters by value type
// The monitor caches the pointers it writes at construction; the status bar
// looks keys up each frame, so a key nobody wrote reads as its zero value
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// ResetCounters zeroes every integer metric, used when a new run starts
func (r *Registry) ResetCounters() {
	r.Ints.Range(func(_ string, v *atomic.Int64) {
		v.Store(0)
	})
}

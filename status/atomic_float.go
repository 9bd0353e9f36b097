package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat holds a float64 gauge as IEEE bits; the zero value is 0.0
type AtomicFloat struct {
	bits atomic.Uint64
	// seeded is set by the first Smooth so the average starts at a real sample
	seeded atomic.Bool
}

// Set replaces the gauge
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
	f.seeded.Store(true)
}

// Get loads the gauge
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Smooth folds sample into an exponential moving average and returns the result
// weight in (0, 1] is the share of the new sample; the first sample is taken as is
func (f *AtomicFloat) Smooth(sample, weight float64) float64 {
	if f.seeded.CompareAndSwap(false, true) {
		f.bits.Store(math.Float64bits(sample))
		return sample
	}
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old)*(1-weight) + sample*weight
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// SweepGenerator plays a short sine tone gliding from one frequency to another
// with a linear fade-out, used for the spawn and exit cues
type SweepGenerator struct {
	sr        beep.SampleRate
	from, to  float64
	amplitude float64
	phase     float64
	pos       int
	samples   int
}

// NewSweepGenerator creates a finite sweep of the given duration
func NewSweepGenerator(sr beep.SampleRate, from, to float64, d time.Duration, amplitude float64) *SweepGenerator {
	return &SweepGenerator{
		sr:        sr,
		from:      from,
		to:        to,
		amplitude: amplitude,
		samples:   sr.N(d),
	}
}

func (g *SweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.samples {
			return i, i > 0
		}

		progress := float64(g.pos) / float64(g.samples)
		freq := g.from + (g.to-g.from)*progress
		g.phase += freq / float64(g.sr)
		g.phase -= math.Floor(g.phase)

		val := g.amplitude * (1 - progress) * math.Sin(2*math.Pi*g.phase)
		samples[i][0] = val
		samples[i][1] = val
		g.pos++
	}
	return len(samples), true
}

func (g *SweepGenerator) Err() error {
	return nil
}

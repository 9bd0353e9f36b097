package physics

import (
	"math"

	"github.com/lixenwraith/procballs/core"
)

// Displacement returns the per-tick movement for speed along heading (degrees)
// Components truncate toward zero, so speeds below one pixel per tick stall on that axis
func Displacement(speed float64, heading int) (dx, dy int) {
	rad := float64(heading) * math.Pi / 180
	return int(speed * math.Cos(rad)), int(speed * math.Sin(rad))
}

// Step advances one ball by a single tick and reflects its heading at the canvas edges
// Axis checks run after the move, x first then y; the y rule reads the heading left by the x rule
// Position is not clamped, a ball may overshoot by at most one displacement
func Step(b *core.Ball, width, height int) {
	dx, dy := Displacement(b.Speed, b.Heading)
	b.X += dx
	b.Y += dy

	if b.X < 0 || b.X+b.Size > width {
		b.Heading = 180 - b.Heading
	}
	if b.Y < 0 || b.Y+b.Size > height {
		b.Heading = -b.Heading
	}
}

// StepAll advances every ball in the map, writing the new value back to its entry
func StepAll(balls map[int]core.Ball, width, height int) {
	for pid, b := range balls {
		Step(&b, width, height)
		balls[pid] = b
	}
}

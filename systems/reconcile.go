package systems

import (
	"sort"

	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/process"
)

// FullTurn is the exclusive upper bound for a randomized initial heading
const FullTurn = 360

// Intner is the randomness used for placement and heading
// *math/rand.Rand satisfies it
type Intner interface {
	Intn(n int) int
}

// Diff summarizes one reconciliation, pids sorted ascending
type Diff struct {
	Added   []int
	Updated []int
	Removed []int
}

// Changed reports whether the key set changed
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Reconcile merges a snapshot into the previous generation of balls
// Only rows owned by user are considered. Existing balls keep position, heading
// and color but take the new size and speed; new pids get a random placement and
// a color from mode; pids missing from the filtered rows are dropped.
// The result is a fresh map, prev is left untouched
func Reconcile(
	prev map[int]core.Ball,
	rows []process.Row,
	user string,
	mode core.PaletteMode,
	width, height int,
	rng Intner,
) (map[int]core.Ball, Diff) {
	next := make(map[int]core.Ball, len(prev))
	var diff Diff

	for _, row := range rows {
		if row.Owner != user {
			continue
		}

		size := core.SizeFromMemory(row.MemoryKB)
		speed := core.SpeedFromCPU(row.CPU)

		if b, ok := prev[row.PID]; ok {
			b.Size = size
			b.Speed = speed
			next[row.PID] = b
			continue
		}

		next[row.PID] = core.Ball{
			PID:     row.PID,
			X:       randBelow(rng, width-size),
			Y:       randBelow(rng, height-size),
			Heading: rng.Intn(FullTurn),
			Speed:   speed,
			Size:    size,
			Color:   core.ColorFor(row.PID, mode),
		}
	}

	for pid := range next {
		if _, ok := prev[pid]; ok {
			diff.Updated = append(diff.Updated, pid)
		} else {
			diff.Added = append(diff.Added, pid)
		}
	}
	for pid := range prev {
		if _, ok := next[pid]; !ok {
			diff.Removed = append(diff.Removed, pid)
		}
	}
	sort.Ints(diff.Added)
	sort.Ints(diff.Updated)
	sort.Ints(diff.Removed)

	return next, diff
}

// randBelow returns a value in [0, n), or 0 when the range is empty
// (canvas not larger than the ball)
func randBelow(rng Intner, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.Intn(n)
}

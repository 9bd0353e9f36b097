package engine

import (
	"sort"
	"sync"

	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/physics"
	"github.com/lixenwraith/procballs/process"
	"github.com/lixenwraith/procballs/systems"
)

// Store is the authoritative pid -> ball mapping
// Balls are held by value; the two mutators (Reconcile, Advance) each hold the
// mutex for their full cycle so readers never see a half-applied generation
type Store struct {
	mu    sync.Mutex
	balls map[int]core.Ball
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		balls: make(map[int]core.Ball),
	}
}

// Reconcile merges a snapshot and swaps the resulting generation in
func (s *Store) Reconcile(
	rows []process.Row,
	user string,
	mode core.PaletteMode,
	width, height int,
	rng systems.Intner,
) systems.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, diff := systems.Reconcile(s.balls, rows, user, mode, width, height, rng)
	s.balls = next
	return diff
}

// Advance runs one motion step for every ball
func (s *Store) Advance(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	physics.StepAll(s.balls, width, height)
}

// Clear drops every ball
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balls = make(map[int]core.Ball)
}

// Get returns a copy of one ball
func (s *Store) Get(pid int) (core.Ball, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balls[pid]
	return b, ok
}

// Len returns the number of tracked balls
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.balls)
}

// Snapshot returns a copy of every ball sorted by pid
func (s *Store) Snapshot() []core.Ball {
	s.mu.Lock()
	out := make([]core.Ball, 0, len(s.balls))
	for _, b := range s.balls {
		out = append(out, b)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

package process

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoOutput is returned when a listing produced no header line at all
var ErrNoOutput = errors.New("process listing produced no output")

// Row is one process from a snapshot
type Row struct {
	Owner    string
	PID      int
	CPU      float64 // percent
	MemoryKB int64   // resident set size
	Command  string
}

// Snapshot is one complete listing
// Skipped holds rows that could not be parsed; they are excluded from Rows
type Snapshot struct {
	Rows    []Row
	Skipped []*RowError
	TakenAt time.Time
}

// Source yields process snapshots
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Name() string
}

// RowError describes a malformed listing line
type RowError struct {
	Line int
	Text string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

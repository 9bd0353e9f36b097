package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/procballs/config"
	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/process"
	"github.com/lixenwraith/procballs/status"
)

// fakeSource serves a fixed listing until told to fail
type fakeSource struct {
	mu    sync.Mutex
	rows  []process.Row
	err   error
	calls int
	block bool
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Snapshot(ctx context.Context) (process.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	rows, err, block := append([]process.Row(nil), f.rows...), f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return process.Snapshot{}, ctx.Err()
	}
	if err != nil {
		return process.Snapshot{}, err
	}
	return process.Snapshot{Rows: rows, TakenAt: time.Now()}, nil
}

func (f *fakeSource) set(rows ...process.Row) {
	f.mu.Lock()
	f.rows = rows
	f.err = nil
	f.mu.Unlock()
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type cueRecorder struct {
	spawns, exits int
}

func (c *cueRecorder) PlaySpawn() { c.spawns++ }
func (c *cueRecorder) PlayExit()  { c.exits++ }

var testProfiles = [2]config.Profile{
	{User: "alice", Palette: "a"},
	{User: "root", Palette: "b"},
}

func newTestMonitor(src process.Source, opts ...MonitorOption) (*Monitor, *status.Registry) {
	reg := status.NewRegistry()
	opts = append([]MonitorOption{WithRegistry(reg), WithRand(&seqRand{})}, opts...)
	return NewMonitor(src, testProfiles, opts...), reg
}

// stamped builds a snapshot taken now
func stamped(rows ...process.Row) process.Snapshot {
	return process.Snapshot{Rows: rows, TakenAt: time.Now()}
}

func pids(balls []core.Ball) []int {
	out := make([]int, len(balls))
	for i, b := range balls {
		out[i] = b.PID
	}
	return out
}

func TestMonitor_StartReconcilesActiveUser(t *testing.T) {
	src := &fakeSource{}
	src.set(
		procRow("alice", 10, 1, 4096),
		procRow("root", 1, 0, 8192),
		procRow("alice", 11, 0, 2048),
	)
	m, reg := newTestMonitor(src)

	require.NoError(t, m.Start(context.Background(), 200, 100))

	assert.True(t, m.Running())
	assert.Equal(t, []int{10, 11}, pids(m.Balls()))
	assert.Equal(t, int64(2), reg.Ints.Get(status.KeyBalls).Load())
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyCycles).Load())
	assert.Equal(t, "alice", reg.Strings.Get(status.KeyUser).Load())
	assert.Equal(t, "fake", reg.Strings.Get(status.KeySource).Load())

	w, h := m.Canvas()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestMonitor_StartClearsPreviousRun(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 0, 4096))
	m, _ := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 200, 100))

	src.fail(errors.New("ps: not found"))
	err := m.Start(context.Background(), 200, 100)
	require.Error(t, err)

	// Cleared even though the fresh listing failed
	assert.Empty(t, m.Balls())
	assert.True(t, m.Running())
}

func TestMonitor_ApplyPreservesPlacement(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 1, 4096))
	m, _ := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 200, 100))
	before, ok := m.Ball(10)
	require.True(t, ok)

	diff := m.Apply(context.Background(), stamped(procRow("alice", 10, 40, 1024*1024)))
	assert.Equal(t, []int{10}, diff.Updated)

	after, _ := m.Ball(10)
	assert.Equal(t, before.X, after.X)
	assert.Equal(t, before.Y, after.Y)
	assert.Equal(t, before.Heading, after.Heading)
	assert.Equal(t, before.Color, after.Color)
	assert.InDelta(t, 40.1, after.Speed, 1e-9)
	assert.Equal(t, core.SizeFromMemory(1024*1024), after.Size)
}

func TestMonitor_FailedRefreshLeavesStore(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 0, 4096), procRow("alice", 11, 0, 4096))
	m, reg := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 200, 100))
	before := m.Balls()

	src.fail(errors.New("fork: resource temporarily unavailable"))
	err := m.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot from fake")

	assert.Equal(t, before, m.Balls())
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyCycleErrors).Load())
	assert.Contains(t, reg.Strings.Get(status.KeyLastError).Load(), "resource temporarily unavailable")

	// A later success clears the error text
	src.set(procRow("alice", 10, 0, 4096))
	require.NoError(t, m.Refresh(context.Background()))
	assert.Empty(t, reg.Strings.Get(status.KeyLastError).Load())
	assert.Equal(t, []int{10}, pids(m.Balls()))
}

func TestMonitor_SnapshotTimeout(t *testing.T) {
	src := &fakeSource{block: true}
	m, _ := newTestMonitor(src, WithSnapshotTimeout(20*time.Millisecond))

	start := time.Now()
	err := m.Start(context.Background(), 200, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, m.Balls())
}

func TestMonitor_ToggleUserRebuildsAndBack(t *testing.T) {
	src := &fakeSource{}
	src.set(
		procRow("alice", 10, 0, 4096),
		procRow("alice", 11, 0, 4096),
		procRow("root", 1, 0, 4096),
	)
	m, reg := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 200, 100))

	require.NoError(t, m.ToggleUser(context.Background()))
	assert.Equal(t, "root", m.Profile().User)
	assert.Equal(t, "b", reg.Strings.Get(status.KeyPalette).Load())
	assert.Equal(t, []int{1}, pids(m.Balls()))
	b, _ := m.Ball(1)
	assert.Equal(t, core.ColorFor(1, core.PaletteB), b.Color)

	require.NoError(t, m.ToggleUser(context.Background()))
	assert.Equal(t, "alice", m.Profile().User)
	assert.Equal(t, []int{10, 11}, pids(m.Balls()))
	b, _ = m.Ball(10)
	assert.Equal(t, core.ColorFor(10, core.PaletteA), b.Color)
}

func TestMonitor_SwitchUserWhileStopped(t *testing.T) {
	src := &fakeSource{}
	m, reg := newTestMonitor(src)

	require.NoError(t, m.SwitchUser(context.Background(), config.Profile{User: "carol", Palette: "b"}))
	assert.Equal(t, "carol", m.Profile().User)
	assert.Equal(t, "carol", reg.Strings.Get(status.KeyUser).Load())
	assert.Zero(t, src.calls)
}

func TestMonitor_ApplyIgnoredWhenStopped(t *testing.T) {
	m, _ := newTestMonitor(&fakeSource{})
	diff := m.Apply(context.Background(), stamped(procRow("alice", 1, 0, 4096)))
	assert.False(t, diff.Changed())
	assert.Empty(t, m.Balls())
}

func TestMonitor_AdvancePausedAndStopped(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 60, 4096))
	m, reg := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 1000, 1000))
	start, _ := m.Ball(10)

	require.True(t, m.TogglePause())
	m.Advance()
	paused, _ := m.Ball(10)
	assert.Equal(t, start, paused)
	assert.True(t, reg.Bools.Get(status.KeyPaused).Load())

	require.False(t, m.TogglePause())
	m.Advance()
	moved, _ := m.Ball(10)
	assert.NotEqual(t, start, moved)
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyMotionTicks).Load())

	m.Stop()
	m.Advance()
	stopped, _ := m.Ball(10)
	assert.Equal(t, moved, stopped)
	assert.False(t, reg.Bools.Get(status.KeyRunning).Load())
}

func TestMonitor_Cues(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 0, 4096))
	cues := &cueRecorder{}
	m, _ := newTestMonitor(src, WithCues(cues))
	require.NoError(t, m.Start(context.Background(), 200, 100))
	assert.Equal(t, 1, cues.spawns)
	assert.Zero(t, cues.exits)

	m.Apply(context.Background(), stamped(procRow("alice", 10, 0, 4096)))
	assert.Equal(t, 1, cues.spawns)

	m.Apply(context.Background(), stamped())
	assert.Equal(t, 1, cues.exits)
}

func TestMonitor_SkippedRowsCounted(t *testing.T) {
	m, reg := newTestMonitor(&fakeSource{})
	require.NoError(t, m.Start(context.Background(), 200, 100))

	m.Apply(context.Background(), process.Snapshot{
		Rows:    []process.Row{procRow("alice", 7, 0, 4096)},
		TakenAt: time.Now(),
		Skipped: []*process.RowError{
			{Line: 3, Text: "garbage", Err: errors.New("too few fields")},
		},
	})
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeySkippedRows).Load())
	assert.Equal(t, []int{7}, pids(m.Balls()))
}

func TestMonitor_ResizeBoundsMotion(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 90, 4096))
	m, _ := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 400, 400))

	m.Resize(50, 40)
	for i := 0; i < 200; i++ {
		m.Advance()
		b, _ := m.Ball(10)
		speed := int(b.Speed) + 1
		// Reflection lets a ball overshoot an edge by at most one step
		assert.GreaterOrEqual(t, b.X, -speed)
		assert.LessOrEqual(t, b.X, 50-b.Size+speed)
		assert.GreaterOrEqual(t, b.Y, -speed)
		assert.LessOrEqual(t, b.Y, 40-b.Size+speed)
	}
}

func TestMonitor_OlderSnapshotDropped(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 0, 4096), procRow("alice", 11, 0, 4096))
	m, reg := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 200, 100))

	older, err := m.Sample(context.Background())
	require.NoError(t, err)

	src.set(procRow("alice", 10, 0, 4096))
	require.NoError(t, m.Refresh(context.Background()))
	require.Equal(t, []int{10}, pids(m.Balls()))

	diff := m.Apply(context.Background(), older)
	assert.False(t, diff.Changed())
	assert.Equal(t, []int{10}, pids(m.Balls()), "exited pid must not come back")
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyStaleSnapshots).Load())

	// Equal timestamps are not newer either
	latest := stamped(procRow("alice", 10, 0, 4096), procRow("alice", 12, 0, 4096))
	m.Apply(context.Background(), latest)
	m.Apply(context.Background(), latest)
	assert.Equal(t, []int{10, 12}, pids(m.Balls()))
	assert.Equal(t, int64(2), reg.Ints.Get(status.KeyStaleSnapshots).Load())
}

func TestMonitor_StartResetsCounters(t *testing.T) {
	src := &fakeSource{}
	src.set(procRow("alice", 10, 0, 4096))
	m, reg := newTestMonitor(src)
	require.NoError(t, m.Start(context.Background(), 200, 100))
	m.Advance()
	require.NoError(t, m.Refresh(context.Background()))
	require.Equal(t, int64(2), reg.Ints.Get(status.KeyCycles).Load())

	require.NoError(t, m.Start(context.Background(), 200, 100))
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyCycles).Load())
	assert.Zero(t, reg.Ints.Get(status.KeyMotionTicks).Load())
	assert.Equal(t, int64(1), reg.Ints.Get(status.KeyBalls).Load())
}

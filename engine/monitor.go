package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/procballs/config"
	"github.com/lixenwraith/procballs/core"
	"github.com/lixenwraith/procballs/process"
	"github.com/lixenwraith/procballs/status"
	"github.com/lixenwraith/procballs/systems"
	"github.com/lixenwraith/procballs/telemetry"
)

// sampleSmoothing is the weight of the newest listing duration in the displayed average
const sampleSmoothing = 0.25

// CuePlayer receives audible notifications of store changes
type CuePlayer interface {
	PlaySpawn()
	PlayExit()
}

// Monitor owns the ball store and is the only component that mutates it
// Apply and Advance are expected on a single goroutine; Sample may run concurrently
type Monitor struct {
	store   *Store
	source  process.Source
	timeout time.Duration
	rng     systems.Intner
	reg     *status.Registry
	cues    CuePlayer
	tracer  trace.Tracer

	mu            sync.Mutex
	profiles      [2]config.Profile
	active        int
	width, height int
	running       bool
	paused        bool
	// lastTaken is the listing time of the newest applied snapshot
	lastTaken time.Time

	// Cached metric pointers
	statRunning  *atomic.Bool
	statPaused   *atomic.Bool
	statBalls    *atomic.Int64
	statCycles   *atomic.Int64
	statErrors   *atomic.Int64
	statStale    *atomic.Int64
	statSkipped  *atomic.Int64
	statAdded    *atomic.Int64
	statRemoved  *atomic.Int64
	statTicks    *atomic.Int64
	statWidth    *atomic.Int64
	statHeight   *atomic.Int64
	statSampleMs *status.AtomicFloat
	statUser     *status.AtomicString
	statPalette  *status.AtomicString
	statLastErr  *status.AtomicString
}

// MonitorOption configures a Monitor
type MonitorOption func(*Monitor)

// WithRand sets the placement randomness
func WithRand(rng systems.Intner) MonitorOption {
	return func(m *Monitor) {
		m.rng = rng
	}
}

// WithRegistry shares a metrics registry with the renderer
func WithRegistry(reg *status.Registry) MonitorOption {
	return func(m *Monitor) {
		m.reg = reg
	}
}

// WithCues enables spawn/exit notifications
func WithCues(cues CuePlayer) MonitorOption {
	return func(m *Monitor) {
		m.cues = cues
	}
}

// WithSnapshotTimeout bounds each process listing
func WithSnapshotTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.timeout = d
	}
}

// NewMonitor creates an idle monitor; profiles[0] is active initially
func NewMonitor(source process.Source, profiles [2]config.Profile, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		store:    NewStore(),
		source:   source,
		profiles: profiles,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		tracer:   telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reg == nil {
		m.reg = status.NewRegistry()
	}

	m.statRunning = m.reg.Bools.Get(status.KeyRunning)
	m.statPaused = m.reg.Bools.Get(status.KeyPaused)
	m.statBalls = m.reg.Ints.Get(status.KeyBalls)
	m.statCycles = m.reg.Ints.Get(status.KeyCycles)
	m.statErrors = m.reg.Ints.Get(status.KeyCycleErrors)
	m.statStale = m.reg.Ints.Get(status.KeyStaleSnapshots)
	m.statSkipped = m.reg.Ints.Get(status.KeySkippedRows)
	m.statAdded = m.reg.Ints.Get(status.KeyBallsAdded)
	m.statRemoved = m.reg.Ints.Get(status.KeyBallsRemoved)
	m.statTicks = m.reg.Ints.Get(status.KeyMotionTicks)
	m.statWidth = m.reg.Ints.Get(status.KeyCanvasWidth)
	m.statHeight = m.reg.Ints.Get(status.KeyCanvasHeight)
	m.statSampleMs = m.reg.Floats.Get(status.KeySnapshotMillis)
	m.statUser = m.reg.Strings.Get(status.KeyUser)
	m.statPalette = m.reg.Strings.Get(status.KeyPalette)
	m.statLastErr = m.reg.Strings.Get(status.KeyLastError)
	m.reg.Strings.Get(status.KeySource).Store(source.Name())

	m.publishProfile(profiles[0])
	return m
}

// Start clears the store and the run counters, sets the canvas and runs one reconciliation
// The monitor is running afterwards even if that first listing failed
func (m *Monitor) Start(ctx context.Context, width, height int) error {
	m.mu.Lock()
	m.width, m.height = width, height
	m.running = true
	m.paused = false
	m.lastTaken = time.Time{}
	m.mu.Unlock()

	m.store.Clear()
	m.reg.ResetCounters()
	m.statRunning.Store(true)
	m.statPaused.Store(false)
	m.statWidth.Store(int64(width))
	m.statHeight.Store(int64(height))
	log.Printf("monitor: start canvas=%dx%d user=%s", width, height, m.Profile().User)

	return m.Refresh(ctx)
}

// Stop halts both cycles; the store keeps its last generation for display
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	m.statRunning.Store(false)
	log.Printf("monitor: stop")
}

// Running reports whether cycles are active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// TogglePause freezes or resumes motion; reconciliation continues while paused
func (m *Monitor) TogglePause() bool {
	m.mu.Lock()
	m.paused = !m.paused
	paused := m.paused
	m.mu.Unlock()
	m.statPaused.Store(paused)
	return paused
}

// Paused reports whether motion is frozen
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Resize updates the canvas bounds used by motion and placement
func (m *Monitor) Resize(width, height int) {
	m.mu.Lock()
	m.width, m.height = width, height
	m.mu.Unlock()
	m.statWidth.Store(int64(width))
	m.statHeight.Store(int64(height))
}

// Canvas returns the current canvas bounds
func (m *Monitor) Canvas() (width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Profile returns the active profile
func (m *Monitor) Profile() config.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[m.active]
}

// ToggleUser switches to the other configured profile
func (m *Monitor) ToggleUser(ctx context.Context) error {
	m.mu.Lock()
	m.active = 1 - m.active
	p := m.profiles[m.active]
	m.mu.Unlock()
	return m.switchTo(ctx, p)
}

// SwitchUser makes p the active filter and reconciles immediately
// The store is not cleared; the old user's balls drop out through the normal merge
func (m *Monitor) SwitchUser(ctx context.Context, p config.Profile) error {
	m.mu.Lock()
	switch p {
	case m.profiles[0]:
		m.active = 0
	case m.profiles[1]:
		m.active = 1
	default:
		m.profiles[m.active] = p
	}
	m.mu.Unlock()
	return m.switchTo(ctx, p)
}

func (m *Monitor) switchTo(ctx context.Context, p config.Profile) error {
	m.publishProfile(p)
	log.Printf("monitor: switch user=%s palette=%s", p.User, p.Palette)
	if !m.Running() {
		return nil
	}
	return m.Refresh(ctx)
}

func (m *Monitor) publishProfile(p config.Profile) {
	m.statUser.Store(p.User)
	m.statPalette.Store(p.Mode().String())
}

// Sample takes one listing, bounded by the snapshot timeout
// Safe to call from a goroutine other than the one applying results
func (m *Monitor) Sample(ctx context.Context) (process.Snapshot, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	ctx, span := m.tracer.Start(ctx, "snapshot", trace.WithAttributes(
		attribute.String("source", m.source.Name()),
	))
	defer span.End()

	started := time.Now()
	snap, err := m.source.Snapshot(ctx)
	m.statSampleMs.Smooth(float64(time.Since(started).Microseconds())/1000, sampleSmoothing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return snap, fmt.Errorf("snapshot from %s: %w", m.source.Name(), err)
	}
	span.SetAttributes(
		attribute.Int("rows", len(snap.Rows)),
		attribute.Int("skipped", len(snap.Skipped)),
	)
	return snap, nil
}

// Refresh samples and applies synchronously
// On failure the store is left unchanged and the error is returned
func (m *Monitor) Refresh(ctx context.Context) error {
	snap, err := m.Sample(ctx)
	if err != nil {
		m.RecordError(err)
		return err
	}
	m.Apply(ctx, snap)
	return nil
}

// RecordError notes a failed acquisition; the cycle is skipped
func (m *Monitor) RecordError(err error) {
	m.statErrors.Add(1)
	m.statLastErr.Store(err.Error())
	log.Printf("monitor: cycle skipped: %v", err)
}

// Apply reconciles one snapshot into the store
// Ignored when the monitor is not running, or when the snapshot was taken no later
// than one already applied; a sampler result may arrive after a synchronous Refresh
func (m *Monitor) Apply(ctx context.Context, snap process.Snapshot) systems.Diff {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return systems.Diff{}
	}
	if !snap.TakenAt.After(m.lastTaken) {
		last := m.lastTaken
		m.mu.Unlock()
		m.statStale.Add(1)
		log.Printf("monitor: dropped stale snapshot taken=%s last=%s",
			snap.TakenAt.Format(time.RFC3339Nano), last.Format(time.RFC3339Nano))
		return systems.Diff{}
	}
	m.lastTaken = snap.TakenAt
	p := m.profiles[m.active]
	width, height := m.width, m.height
	m.mu.Unlock()

	_, span := m.tracer.Start(ctx, "reconcile", trace.WithAttributes(
		attribute.String("user", p.User),
		attribute.String("palette", p.Mode().String()),
		attribute.Int("rows", len(snap.Rows)),
	))
	defer span.End()

	for _, rowErr := range snap.Skipped {
		log.Printf("monitor: skipped malformed row: %v", rowErr)
	}

	diff := m.store.Reconcile(snap.Rows, p.User, p.Mode(), width, height, m.rng)

	m.statCycles.Add(1)
	m.statSkipped.Add(int64(len(snap.Skipped)))
	m.statAdded.Add(int64(len(diff.Added)))
	m.statRemoved.Add(int64(len(diff.Removed)))
	m.statBalls.Store(int64(m.store.Len()))
	m.statLastErr.Store("")

	span.SetAttributes(
		attribute.Int("added", len(diff.Added)),
		attribute.Int("updated", len(diff.Updated)),
		attribute.Int("removed", len(diff.Removed)),
	)

	if diff.Changed() {
		log.Printf("monitor: reconcile user=%s added=%v removed=%v total=%d",
			p.User, diff.Added, diff.Removed, len(diff.Added)+len(diff.Updated))
	}
	if m.cues != nil {
		if len(diff.Added) > 0 {
			m.cues.PlaySpawn()
		}
		if len(diff.Removed) > 0 {
			m.cues.PlayExit()
		}
	}

	return diff
}

// Advance runs one motion step unless stopped or paused
func (m *Monitor) Advance() {
	m.mu.Lock()
	if !m.running || m.paused {
		m.mu.Unlock()
		return
	}
	width, height := m.width, m.height
	m.mu.Unlock()

	m.store.Advance(width, height)
	m.statTicks.Add(1)
}

// Balls returns a render copy sorted by pid
func (m *Monitor) Balls() []core.Ball {
	return m.store.Snapshot()
}

// Ball returns a copy of one ball
func (m *Monitor) Ball(pid int) (core.Ball, bool) {
	return m.store.Get(pid)
}

package status

// Metric keys written by the monitor and game loop
const (
	KeyRunning = "monitor.running"
	KeyPaused  = "motion.paused"

	KeyBalls          = "store.balls"
	KeyCycles         = "reconcile.cycles"
	KeyCycleErrors    = "reconcile.errors"
	KeyStaleSnapshots = "reconcile.stale"
	KeySkippedRows    = "reconcile.skipped_rows"
	KeyBallsAdded     = "reconcile.added"
	KeyBallsRemoved   = "reconcile.removed"
	KeyMotionTicks    = "motion.ticks"
	KeyCanvasWidth    = "canvas.width"
	KeyCanvasHeight   = "canvas.height"
	KeySnapshotMillis = "source.snapshot_ms"

	KeyUser      = "monitor.user"
	KeyPalette   = "monitor.palette"
	KeySource    = "source.name"
	KeyLastError = "source.last_error"
)

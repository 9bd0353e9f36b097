package constants

import "time"

// Loop timing
const (
	// MotionInterval is the motion step and redraw interval (~30 Hz)
	MotionInterval = 33 * time.Millisecond

	// ReconcileInterval is the process sampling interval
	ReconcileInterval = 1 * time.Second

	// SnapshotTimeout bounds one process listing
	SnapshotTimeout = 5 * time.Second
)

// Default identities toggled by the switch key
const (
	DefaultSecondaryUser = "root"
)

// Logging
const (
	LogDir      = "logs"
	LogFileName = "procballs.log"
	MaxLogSize  = 10 * 1024 * 1024
)

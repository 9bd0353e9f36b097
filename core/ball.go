package core

import "math"

const (
	// MinBallSize is the smallest diameter a ball may have
	MinBallSize = 1
	// SpeedFloor is added to cpu percent so an idle process keeps a non-zero speed
	SpeedFloor = 0.1
)

// Ball is the visual entity for one tracked process
// Held by value in the store; updating a ball means replacing its map entry
type Ball struct {
	PID     int
	X, Y    int // top-left corner of the bounding square
	Heading int // degrees, not normalized
	Speed   float64
	Size    int // diameter
	Color   RGB
}

// SizeFromMemory converts resident memory in KB to a ball diameter
// size = round(2*ln(MB)) + 1, clamped to MinBallSize for memory under 1 MB
func SizeFromMemory(memoryKB int64) int {
	if memoryKB <= 0 {
		return MinBallSize
	}
	mb := float64(memoryKB) / 1024.0
	size := int(math.Round(2*math.Log(mb))) + 1
	if size < MinBallSize {
		return MinBallSize
	}
	return size
}

// SpeedFromCPU converts cpu percent to pixels per motion tick
func SpeedFromCPU(cpuPercent float64) float64 {
	if cpuPercent < 0 {
		cpuPercent = 0
	}
	return cpuPercent + SpeedFloor
}

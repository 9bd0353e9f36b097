package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeFromMemory(t *testing.T) {
	tests := []struct {
		name     string
		memoryKB int64
		want     int
	}{
		{"2MB", 2048, 2},
		{"4MB", 4096, 4},
		{"exactly 1MB", 1024, 1},
		{"100MB", 100 * 1024, 10},
		{"below 1MB clamps", 512, MinBallSize},
		{"zero clamps", 0, MinBallSize},
		{"negative clamps", -10, MinBallSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SizeFromMemory(tt.memoryKB))
		})
	}
}

func TestSpeedFromCPU(t *testing.T) {
	assert.InDelta(t, 5.1, SpeedFromCPU(5.0), 1e-9)
	assert.InDelta(t, 0.1, SpeedFromCPU(0), 1e-9)
	assert.InDelta(t, 0.1, SpeedFromCPU(-3), 1e-9, "negative cpu readings are treated as idle")
}

func TestColorFor_PaletteA(t *testing.T) {
	assert.Equal(t, RGB{R: 0, G: 0, B: 100}, ColorFor(100, PaletteA))
	assert.Equal(t, RGB{R: 1, G: 2, B: 3}, ColorFor(65536+512+3, PaletteA))
}

func TestColorFor_PaletteBMirrorsA(t *testing.T) {
	for _, pid := range []int{1, 100, 4321, 65535, 123456, 0xFFFFFF} {
		a := ColorFor(pid, PaletteA)
		b := ColorFor(pid, PaletteB)
		assert.Equal(t, a.R, b.B, "pid %d", pid)
		assert.Equal(t, a.G, b.G, "pid %d", pid)
		assert.Equal(t, a.B, b.R, "pid %d", pid)
	}
}

func TestColorFor_Deterministic(t *testing.T) {
	assert.Equal(t, ColorFor(31337, PaletteB), ColorFor(31337, PaletteB))
}

func TestColorFor_WidePidMasked(t *testing.T) {
	// 0x1_02_03_04: bits above 24 are dropped from the high channel
	c := ColorFor(0x1020304, PaletteA)
	assert.Equal(t, RGB{R: 0x02, G: 0x03, B: 0x04}, c)
}

func TestParsePaletteMode(t *testing.T) {
	m, ok := ParsePaletteMode("B")
	assert.True(t, ok)
	assert.Equal(t, PaletteB, m)

	_, ok = ParsePaletteMode("rgb")
	assert.False(t, ok)
}

func TestRGBScale(t *testing.T) {
	c := RGB{200, 100, 50}
	assert.Equal(t, RGB{100, 50, 25}, c.Scale(0.5))
	assert.Equal(t, RGBBlack, c.Scale(0))
	assert.Equal(t, c, c.Scale(1.5))
}

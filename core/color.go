package core

// RGB stores explicit 8-bit color channels, decoupled from tcell
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	RGBBlack = RGB{0, 0, 0}
)

// PaletteMode selects the channel ordering used to derive a ball color from its pid
type PaletteMode uint8

const (
	// PaletteA maps pid = 65536*R + 256*G + B
	PaletteA PaletteMode = iota
	// PaletteB maps pid = 65536*B + 256*G + R
	PaletteB
)

// String returns the short name used in config and the status bar
func (m PaletteMode) String() string {
	switch m {
	case PaletteA:
		return "a"
	case PaletteB:
		return "b"
	default:
		return "unknown"
	}
}

// ParsePaletteMode accepts "a"/"b" (case-insensitive)
func ParsePaletteMode(s string) (PaletteMode, bool) {
	switch s {
	case "a", "A":
		return PaletteA, true
	case "b", "B":
		return PaletteB, true
	}
	return PaletteA, false
}

// ColorFor decomposes pid into three 8-bit channels
// Each channel is masked, pids wider than 24 bits wrap instead of overflowing
func ColorFor(pid int, mode PaletteMode) RGB {
	hi := uint8((pid >> 16) & 0xFF)
	mid := uint8((pid >> 8) & 0xFF)
	lo := uint8(pid & 0xFF)

	if mode == PaletteB {
		return RGB{R: lo, G: mid, B: hi}
	}
	return RGB{R: hi, G: mid, B: lo}
}

// Scale multiplies each channel by factor (for fading effects)
func (c RGB) Scale(factor float64) RGB {
	if factor <= 0 {
		return RGBBlack
	}
	if factor >= 1 {
		return c
	}
	return RGB{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}

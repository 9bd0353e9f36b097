package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/procballs/core"
)

// Fixed UI colors
var (
	RgbBackground   = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbOutOfCanvas  = tcell.NewRGBColor(16, 16, 22)    // Terminal area outside the canvas bounds
	RgbStatusBar    = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusBarBg  = tcell.NewRGBColor(40, 42, 58)
	RgbStatusDim    = tcell.NewRGBColor(150, 150, 170)
	RgbModeIdle     = tcell.NewRGBColor(120, 120, 120)
	RgbModeRunning  = tcell.NewRGBColor(0, 200, 0)
	RgbModePaused   = tcell.NewRGBColor(255, 165, 0)
	RgbModePrompt   = tcell.NewRGBColor(100, 150, 255)
	RgbErrorText    = tcell.NewRGBColor(255, 80, 80)
	RgbPromptCursor = tcell.NewRGBColor(255, 255, 255)
)

// ToTcell converts a core color to a tcell color
// tcell downsamples to the terminal palette when truecolor is unavailable
func ToTcell(c core.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/procballs/constants"
	"github.com/lixenwraith/procballs/status"
)

// Prompt is the single-line input shown in place of the status bar
type Prompt struct {
	Label string
	Input string
}

// StatusBar draws the bottom row from registry metrics
type StatusBar struct {
	reg *status.Registry
}

// NewStatusBar creates a status bar renderer
func NewStatusBar(reg *status.Registry) *StatusBar {
	return &StatusBar{reg: reg}
}

// Render draws the bar at row y; a non-nil prompt replaces the metrics
func (s *StatusBar) Render(screen tcell.Screen, y, width int, prompt *Prompt) {
	base := tcell.StyleDefault.Foreground(RgbStatusBar).Background(RgbStatusBarBg)
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, base)
	}

	if prompt != nil {
		x := drawText(screen, 0, y, width, constants.ModeTextPrompt, base.Foreground(tcell.ColorBlack).Background(RgbModePrompt))
		x = drawText(screen, x+1, y, width, prompt.Label, base)
		x = drawText(screen, x, y, width, prompt.Input, base.Bold(true))
		if x < width {
			screen.SetContent(x, y, ' ', nil, base.Background(RgbPromptCursor))
		}
		return
	}

	modeText, modeColor := s.mode()
	x := drawText(screen, 0, y, width, modeText, base.Foreground(tcell.ColorBlack).Background(modeColor))

	info := fmt.Sprintf(" %s/%s  balls:%d  cycles:%d  +%d -%d  skipped:%d  canvas:%dx%d  %s %.1fms",
		s.reg.Strings.Get(status.KeyUser).Load(),
		s.reg.Strings.Get(status.KeyPalette).Load(),
		s.reg.Ints.Get(status.KeyBalls).Load(),
		s.reg.Ints.Get(status.KeyCycles).Load(),
		s.reg.Ints.Get(status.KeyBallsAdded).Load(),
		s.reg.Ints.Get(status.KeyBallsRemoved).Load(),
		s.reg.Ints.Get(status.KeySkippedRows).Load(),
		s.reg.Ints.Get(status.KeyCanvasWidth).Load(),
		s.reg.Ints.Get(status.KeyCanvasHeight).Load(),
		s.reg.Strings.Get(status.KeySource).Load(),
		s.reg.Floats.Get(status.KeySnapshotMillis).Get(),
	)
	x = drawText(screen, x, y, width, info, base)

	if errText := s.reg.Strings.Get(status.KeyLastError).Load(); errText != "" {
		x = drawText(screen, x+2, y, width, "err: "+errText, base.Foreground(RgbErrorText))
	}

	hints := constants.KeyHints
	if hx := width - len(hints); hx > x+1 {
		drawText(screen, hx, y, width, hints, base.Foreground(RgbStatusDim))
	}
}

func (s *StatusBar) mode() (string, tcell.Color) {
	switch {
	case !s.reg.Bools.Get(status.KeyRunning).Load():
		return constants.ModeTextIdle, RgbModeIdle
	case s.reg.Bools.Get(status.KeyPaused).Load():
		return constants.ModeTextPaused, RgbModePaused
	default:
		return constants.ModeTextRunning, RgbModeRunning
	}
}

// drawText writes text from x, clipped at width, and returns the next column
func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	for _, r := range text {
		if x >= width {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

package render

import "github.com/lixenwraith/procballs/core"

// DrawBalls paints every ball onto the canvas; brightness scales colors (1 = unchanged)
func DrawBalls(canvas Canvas, balls []core.Ball, brightness float64) {
	for _, b := range balls {
		canvas.FillCircle(b.X, b.Y, b.Size, b.Color.Scale(brightness))
	}
}

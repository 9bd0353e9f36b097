package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/procballs/core"
)

// upperHalfBlock paints the top half of a cell with the foreground color
const upperHalfBlock = '▀'

// Canvas is the drawing surface balls are rendered onto
type Canvas interface {
	Size() (width, height int)
	FillCircle(x, y, d int, c core.RGB)
}

// PixelCanvas is a pixel grid over a block of terminal rows
// One pixel is one column wide and half a row tall, so circles look round
// The logical canvas may be smaller than the terminal area; the remainder is shaded
type PixelCanvas struct {
	cols, rows    int // terminal area in cells
	width, height int // logical canvas in pixels
	pixels        []core.RGB
	set           []bool
}

// NewPixelCanvas creates a canvas of width x height pixels over cols x rows cells
func NewPixelCanvas(cols, rows, width, height int) *PixelCanvas {
	pc := &PixelCanvas{}
	pc.Resize(cols, rows, width, height)
	return pc
}

// Resize reallocates the pixel buffer
func (pc *PixelCanvas) Resize(cols, rows, width, height int) {
	pc.cols, pc.rows = max(cols, 0), max(rows, 0)
	pc.width, pc.height = max(width, 0), max(height, 0)
	n := pc.cols * pc.rows * 2
	pc.pixels = make([]core.RGB, n)
	pc.set = make([]bool, n)
}

// PixelsFor returns the pixel area that fits cols x rows cells
func PixelsFor(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Size implements Canvas; it is the logical canvas, not the terminal area
func (pc *PixelCanvas) Size() (int, int) {
	return pc.width, pc.height
}

// Clear resets every pixel to the background
func (pc *PixelCanvas) Clear() {
	clear(pc.set)
}

// SetPixel colors one pixel; out-of-area and out-of-canvas pixels are clipped
func (pc *PixelCanvas) SetPixel(x, y int, c core.RGB) {
	if x < 0 || y < 0 || x >= pc.width || y >= pc.height {
		return
	}
	if x >= pc.cols || y >= pc.rows*2 {
		return
	}
	i := y*pc.cols + x
	pc.pixels[i] = c
	pc.set[i] = true
}

// Pixel returns the color at (x, y) and whether it was painted
func (pc *PixelCanvas) Pixel(x, y int) (core.RGB, bool) {
	if x < 0 || y < 0 || x >= pc.cols || y >= pc.rows*2 {
		return core.RGB{}, false
	}
	i := y*pc.cols + x
	return pc.pixels[i], pc.set[i]
}

// FillCircle implements Canvas
// (x, y) is the top-left of the d x d bounding square; a pixel is filled when its
// center lies inside the inscribed circle
func (pc *PixelCanvas) FillCircle(x, y, d int, c core.RGB) {
	if d <= 0 {
		return
	}
	if d <= 2 {
		for py := 0; py < d; py++ {
			for px := 0; px < d; px++ {
				pc.SetPixel(x+px, y+py, c)
			}
		}
		return
	}

	r := float64(d) / 2
	rSq := r * r
	for py := 0; py < d; py++ {
		cy := float64(py) + 0.5 - r
		for px := 0; px < d; px++ {
			cx := float64(px) + 0.5 - r
			if cx*cx+cy*cy <= rSq {
				pc.SetPixel(x+px, y+py, c)
			}
		}
	}
}

// Flush writes the pixel grid to screen rows [0, rows) as half-block cells
func (pc *PixelCanvas) Flush(screen tcell.Screen) {
	for row := 0; row < pc.rows; row++ {
		for col := 0; col < pc.cols; col++ {
			top := pc.cellColor(col, row*2)
			bottom := pc.cellColor(col, row*2+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			screen.SetContent(col, row, upperHalfBlock, nil, style)
		}
	}
}

func (pc *PixelCanvas) cellColor(x, y int) tcell.Color {
	if x >= pc.width || y >= pc.height {
		return RgbOutOfCanvas
	}
	if c, ok := pc.Pixel(x, y); ok {
		return ToTcell(c)
	}
	return RgbBackground
}

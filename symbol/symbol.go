// Package symbol draws the tri-state score markers.
package symbol

import (
	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/score"
)

// LineWidth is the stroke width of check and cross marks, in mm.
const LineWidth = 0.4

// Draw paints the marker for v inside the size x size box at (x, y). The
// caller's graphics state is left untouched.
func Draw(c canvas.Canvas, x, y, size float64, v score.Value, color canvas.Color) {
	c.Save()
	defer c.Restore()
	c.SetStrokeColor(color)
	c.SetFillColor(color)
	c.SetLineWidth(LineWidth)

	switch v {
	case score.Acquired:
		midX, midY := x+0.35*size, y+0.5*size
		c.DrawLine(x, y+0.25*size, midX, midY)
		c.DrawLine(midX, midY, x+size, y)
	case score.InProgress:
		c.DrawCircle(x+size/2, y+size/2, size/2.5, true)
	case score.NotAcquired:
		c.DrawLine(x, y, x+size, y+size)
		c.DrawLine(x+size, y, x, y+size)
	}
}

// CenteredIn returns the origin of a size x size box centred in a cell.
func CenteredIn(cellX, cellY, cellW, cellH, size float64) (x, y float64) {
	return cellX + (cellW-size)/2, cellY + (cellH-size)/2
}

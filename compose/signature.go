package compose

import (
	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/layout"
)

// Signatures draws the guardian, principal and educator slots anchored near
// the page foot: below Top when content ends above it, on a new page when
// content already ends past TooLate. It returns the cursor below the block.
func (c *Composer) Signatures(cur layout.Cursor) layout.Cursor {
	switch {
	case cur.Y > c.sig.TooLate:
		cur = c.newPage(cur)
		cur.Y = c.sig.Top
	case cur.Y < c.sig.Top:
		cur.Y = c.sig.Top
	}

	labels := []string{c.labels.Guardian, c.labels.Principal, c.labels.Educator}
	slotW := c.contentWidth() / float64(len(labels))
	st := c.styles.Signature
	for i, l := range labels {
		x := c.mirror(float64(i)*slotW, slotW)
		c.cv.DrawText(canvas.Box{X: x, Y: cur.Y, W: slotW, H: c.sig.LabelHeight, Align: canvas.AlignCenter, MaxLines: 1},
			c.shape(l, canvas.FontBold), st)
		lineY := cur.Y + c.sig.UnderlineOffset
		c.cv.DrawLine(x+c.sig.Inset, lineY, x+slotW-c.sig.Inset, lineY)
	}
	cur.Y += c.sig.UnderlineOffset
	return cur
}

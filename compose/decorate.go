package compose

import (
	"strconv"
	"strings"

	"github.com/wudi/reportcard/canvas"
)

// decoratePage draws the title band and the page footer. It runs as the
// canvas page hook, so pages started by the layout engine get it too.
func (c *Composer) decoratePage(cv canvas.Canvas, page int) {
	width := cv.PageContentWidth()
	left := c.margins.Left
	top := max(c.margins.Top-22, 2.0)

	title := c.shape(c.labels.Title, canvas.FontBold)
	cv.DrawText(canvas.Box{X: left, Y: top, W: width, H: 8, Align: canvas.AlignCenter, MaxLines: 1}, title, c.styles.Title)
	if c.labels.Subtitle != "" {
		sub := c.shape(c.labels.Subtitle, canvas.FontRegular)
		cv.DrawText(canvas.Box{X: left, Y: top + 8, W: width, H: 6, Align: canvas.AlignCenter, MaxLines: 1}, sub, c.styles.Subtitle)
	}
	cv.Save()
	cv.SetStrokeColor(c.styles.Subtitle.Color)
	cv.SetLineWidth(0.3)
	cv.DrawLine(left, top+16, left+width, top+16)
	cv.Restore()

	footerY := c.margins.Top + cv.PageContentHeight() + 3
	label := strings.ReplaceAll(c.labels.Page, "{n}", strconv.Itoa(page+1))
	cv.DrawText(canvas.Box{X: left, Y: footerY, W: width, H: 5, Align: canvas.AlignCenter, MaxLines: 1}, c.shape(label, canvas.FontRegular), c.styles.Footer)
}

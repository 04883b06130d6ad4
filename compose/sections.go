package compose

import (
	"math"
	"strconv"
	"strings"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/layout"
	"github.com/wudi/reportcard/score"
	"github.com/wudi/reportcard/symbol"
)

// infoLabelFraction is the share of a label/value pair given to the label.
const infoLabelFraction = 0.36

// InfoPanel draws the bordered student box: two rows of two label/value
// pairs. Every string is confined to its own fixed-width cell and clipped to
// the lines that fit, so long values never run into neighbouring labels.
func (c *Composer) InfoPanel(st score.Student, cur layout.Cursor) layout.Cursor {
	width := c.contentWidth()
	h := c.infoHeight
	cur = c.ensure(cur, h)

	c.cv.Save()
	c.cv.SetFillColor(c.styles.PanelFill)
	c.cv.DrawRect(c.margins.Left, cur.Y, width, h, true)
	c.cv.Restore()
	c.cv.DrawRect(c.margins.Left, cur.Y, width, h, false)

	pairs := [2][2][2]string{
		{{c.labels.Name, st.Name}, {c.labels.Level, st.Level}},
		{{c.labels.DateOfBirth, st.DateOfBirth}, {c.labels.Gender, st.Gender}},
	}
	pad := 2.0
	rowH := (h - 2*pad) / 2
	pairW := width / 2
	labelW := pairW * infoLabelFraction
	valueW := pairW - labelW
	lines := max(1, int(math.Floor((rowH-2*c.styles.InfoValue.Padding)/c.styles.InfoValue.LineHeight)))

	for r, row := range pairs {
		y := cur.Y + pad + float64(r)*rowH
		for p, pair := range row {
			// From the start edge: label, then value.
			labelX := c.mirror(float64(p)*pairW, labelW)
			valueX := c.mirror(float64(p)*pairW+labelW, valueW)
			c.cv.DrawText(canvas.Box{X: labelX, Y: y, W: labelW, H: rowH, Align: canvas.AlignStart, MaxLines: lines},
				c.shape(pair[0], canvas.FontBold), c.styles.InfoLabel)
			c.cv.DrawText(canvas.Box{X: valueX, Y: y, W: valueW, H: rowH, Align: canvas.AlignStart, MaxLines: lines},
				c.shape(pair[1], canvas.FontRegular), c.styles.InfoValue)
		}
	}
	cur.Y += h + c.sectionGap
	return cur
}

// SummaryLine draws the overall percentage and the number of weak items.
func (c *Composer) SummaryLine(s score.Summary, cur layout.Cursor) layout.Cursor {
	text := strings.NewReplacer(
		"{overall}", strconv.FormatFloat(s.Overall, 'f', 0, 64),
		"{weaknesses}", strconv.Itoa(len(s.Weaknesses)),
	).Replace(c.labels.Summary)
	run := c.shape(text, canvas.FontBold)
	width := c.contentWidth()
	h, _ := c.cv.MeasureText(run, c.styles.Summary, width)
	cur = c.ensure(cur, h)
	c.cv.DrawText(canvas.Box{X: c.margins.Left, Y: cur.Y, W: width, H: h, Align: canvas.AlignCenter}, run, c.styles.Summary)
	cur.Y += h + c.sectionGap/2
	return cur
}

// legendItemWidth is the slot of one legend entry: symbol, gap, label.
const legendItemWidth = 45

// Legend draws the three score markers with their labels, equally spaced and
// centred as a group.
func (c *Composer) Legend(cur layout.Cursor) layout.Cursor {
	st := c.styles.Legend
	size := 3.5
	gap := 2.0
	h := max(st.LineHeight, size)
	cur = c.ensure(cur, h)

	n := len(score.Values)
	group := float64(n) * legendItemWidth
	start := (c.contentWidth() - group) / 2
	for i, v := range score.Values {
		off := start + float64(i)*legendItemWidth
		symX := c.mirror(off, size)
		labelX := c.mirror(off+size+gap, legendItemWidth-size-gap)
		symbol.Draw(c.cv, symX, cur.Y+(h-size)/2, size, v, c.symbolColor[v])
		c.cv.DrawText(canvas.Box{X: labelX, Y: cur.Y, W: legendItemWidth - size - gap, H: h, Align: canvas.AlignStart, MaxLines: 1},
			c.shape(c.labels.Status[v], canvas.FontRegular), st)
	}
	cur.Y += h + c.sectionGap
	return cur
}

// ensure starts a new page when h does not fit above the content bottom.
func (c *Composer) ensure(cur layout.Cursor, h float64) layout.Cursor {
	if cur.Y+h > c.contentBottom() {
		return c.newPage(cur)
	}
	return cur
}

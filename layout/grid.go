package layout

import (
	"math"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/score"
	"github.com/wudi/reportcard/symbol"
)

// BatchResult records the geometry of one laid out batch.
type BatchResult struct {
	Page          int
	HeaderY       float64
	ContentStartY float64
	// ColumnEndY is the y where each column stopped.
	ColumnEndY []float64
	MaxY       float64
	Truncated  []bool
	// Widths are the slot widths drawn, headers and padding included.
	Widths    []float64
	Overflows []error
}

// Result is the outcome of laying out one table.
type Result struct {
	Cursor  Cursor
	Batches []BatchResult
}

// slot is the fixed geometry of one column position.
type slot struct {
	x, w           float64
	labelX, labelW float64
	symX, symW     float64
}

// columns computes the slot geometry once per table. The last slot takes the
// floating point remainder so a full row spans the content width exactly.
func (e *Engine) columns(t score.TableSpec) []slot {
	n := t.ColumnsPerBatch
	total := e.c.PageContentWidth()
	base := total / float64(n)
	slots := make([]slot, n)
	var prefix float64
	for i := range slots {
		w := base
		if i == n-1 {
			w = total - prefix
		}
		x := e.Margins.Left + prefix
		if e.RTL {
			x = e.Margins.Left + total - prefix - w
		}
		s := slot{x: x, w: w, labelW: w * t.TextFraction}
		s.symW = w - s.labelW
		if e.RTL {
			s.symX, s.labelX = x, x+s.symW
		} else {
			s.labelX, s.symX = x, x+s.labelW
		}
		slots[i] = s
		prefix += w
	}
	return slots
}

// Layout draws t starting at cur and returns where the next block starts.
// An empty table draws nothing.
func (e *Engine) Layout(t score.TableSpec, cur Cursor) (Result, error) {
	res := Result{Cursor: cur}
	if err := t.Validate(); err != nil {
		return res, err
	}
	if t.Empty() {
		return res, nil
	}
	slots := e.columns(t)
	if t.Title != "" {
		cur = e.drawTitle(t.Title, cur)
	}
	for _, batch := range t.Batches() {
		var br BatchResult
		br, cur = e.layoutBatch(t, batch, slots, cur)
		res.Batches = append(res.Batches, br)
	}
	res.Cursor = cur
	return res, nil
}

func (e *Engine) drawTitle(title string, cur Cursor) Cursor {
	st := e.Styles.Title
	width := e.c.PageContentWidth()
	run := e.Shape(title, canvas.FontBold)
	h, _ := e.c.MeasureText(run, st, width)
	cur = e.ensureRoom(cur, h+e.HeaderHeight)
	e.c.Save()
	e.c.SetFillColor(e.Styles.TitleFill)
	e.c.DrawText(canvas.Box{X: e.Margins.Left, Y: cur.Y, W: width, H: h, Align: canvas.AlignCenter, Border: true, Fill: true}, run, st)
	e.c.Restore()
	cur.Y += h
	return cur
}

func (e *Engine) layoutBatch(t score.TableSpec, batch []score.Domain, slots []slot, cur Cursor) (BatchResult, Cursor) {
	labels, headerH, lines := e.headers(batch, slots)
	if cur.Y+headerH > e.ContentBottom || (e.HeaderKeep > 0 && cur.Y+headerH+e.HeaderKeep > e.OverflowY) {
		cur = e.newPage(cur)
	}
	br := BatchResult{
		Page:          cur.Page,
		HeaderY:       cur.Y,
		ContentStartY: cur.Y + headerH,
		ColumnEndY:    make([]float64, len(batch)),
		Truncated:     make([]bool, len(batch)),
	}

	drawn := len(batch)
	if t.PadShortBatches {
		drawn = len(slots)
	}
	e.c.Save()
	e.c.SetFillColor(e.Styles.HeaderFill)
	for i := 0; i < drawn; i++ {
		s := slots[i]
		box := canvas.Box{X: s.x, Y: cur.Y, W: s.w, H: headerH, Align: canvas.AlignCenter, Border: true, Fill: true, MaxLines: lines}
		if i < len(batch) {
			e.c.DrawText(box, labels[i], e.Styles.Header)
		} else {
			e.c.DrawRect(box.X, box.Y, box.W, box.H, true)
			e.c.DrawRect(box.X, box.Y, box.W, box.H, false)
		}
		br.Widths = append(br.Widths, s.w)
	}
	e.c.Restore()

	for i, d := range batch {
		end, truncated, overflow := e.layoutColumn(d, slots[i], br.ContentStartY)
		br.ColumnEndY[i] = end
		br.Truncated[i] = truncated
		if overflow != nil {
			br.Overflows = append(br.Overflows, overflow)
		}
	}
	br.MaxY = br.ContentStartY
	for _, y := range br.ColumnEndY {
		br.MaxY = max(br.MaxY, y)
	}
	cur.Y = br.MaxY + e.BatchGap
	return br, cur
}

// headers shapes the batch's header labels and returns the header row height:
// HeaderHeight, raised to the tallest wrapped label but never above one page
// body. lines is the number of label lines that fit in that height.
func (e *Engine) headers(batch []score.Domain, slots []slot) ([]canvas.Run, float64, int) {
	st := e.Styles.Header
	labels := make([]canvas.Run, len(batch))
	h := e.HeaderHeight
	for i, d := range batch {
		labels[i] = e.Shape(d.HeaderLabel(), canvas.FontBold)
		need, _ := e.c.MeasureText(labels[i], st, slots[i].w)
		h = max(h, need)
	}
	h = min(h, e.OverflowY-e.Margins.Top)
	lines := 1
	if st.LineHeight > 0 {
		lines = max(1, int(math.Floor((h-2*st.Padding)/st.LineHeight+1e-9)))
	}
	return labels, h, lines
}

// layoutColumn walks the items of d top-down from y. It returns the end y,
// whether the column was cut short, and the overflow error if an item could
// never fit.
func (e *Engine) layoutColumn(d score.Domain, s slot, y float64) (float64, bool, error) {
	st := e.Styles.Item
	body := e.OverflowY - e.Margins.Top
	for idx, it := range d.Items {
		run := e.Shape(it.Label, canvas.FontRegular)
		h, _ := e.c.MeasureText(run, st, s.labelW)
		if h > body {
			err := &OverflowError{Domain: d.Name, Item: it.Label, Height: h}
			e.log.Warn("item does not fit on a page",
				observability.String("domain", d.Name),
				observability.String("item", it.Label),
				observability.Float("height", h))
			return e.placeholder(s, y), true, err
		}
		if y+h > e.OverflowY {
			e.log.Debug("column truncated",
				observability.String("domain", d.Name),
				observability.Float("y", y),
				observability.Int("remaining", len(d.Items)-idx))
			return e.placeholder(s, y), true, nil
		}
		e.c.DrawText(canvas.Box{X: s.labelX, Y: y, W: s.labelW, H: h, Align: canvas.AlignStart, Border: true}, run, st)
		e.c.DrawRect(s.symX, y, s.symW, h, false)
		size := min(e.Styles.SymbolSize, s.symW*0.8, h*0.8)
		sx, sy := symbol.CenteredIn(s.symX, y, s.symW, h, size)
		symbol.Draw(e.c, sx, sy, size, it.Value, e.Styles.SymbolColors[it.Value])
		y += h
	}
	return y, false, nil
}

// placeholder draws the single truncation cell of a column at y.
func (e *Engine) placeholder(s slot, y float64) float64 {
	st := e.Styles.Continues
	run := e.Shape(e.Continues, canvas.FontRegular)
	h, _ := e.c.MeasureText(run, st, s.w)
	e.c.DrawText(canvas.Box{X: s.x, Y: y, W: s.w, H: h, Align: canvas.AlignCenter, Border: true}, run, st)
	return y + h
}

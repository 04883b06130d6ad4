package canvas

import (
	"fmt"
	"slices"
)

// Kind discriminates recorded commands.
type Kind int

const (
	KindText Kind = iota + 1
	KindLine
	KindRect
	KindCircle
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLine:
		return "line"
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is the graphics state captured with each command.
type State struct {
	Stroke    Color
	Fill      Color
	LineWidth float64
}

// Command is one recorded draw.
//
//   - text: X,Y is the pen position on the baseline, Glyphs in visual order.
//   - line: X,Y to X2,Y2.
//   - rect: X,Y top-left corner, W,H size.
//   - circle: X,Y centre, R radius.
type Command struct {
	Kind   Kind
	X, Y   float64
	X2, Y2 float64
	W, H   float64
	R      float64
	Fill   bool
	Stroke bool
	Font   FontID
	Size   float64
	Glyphs []Glyph
	Text   string
	State  State
}

// Page is the ordered command list of one page.
type Page struct {
	Index    int
	Commands []Command
}

// PageLayout is the finalized output of a Recorder.
type PageLayout struct {
	Width, Height float64
	Pages         []Page
}

// Margins of the content area, in mm.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Geometry is the page size and content margins.
type Geometry struct {
	Width, Height float64
	Margins       Margins
}

// A4 returns a portrait A4 page. The top margin leaves a band for the page
// title.
func A4() Geometry {
	return Geometry{Width: 210, Height: 297, Margins: Margins{Top: 30, Right: 10, Bottom: 15, Left: 10}}
}

// PageHook decorates a freshly started page.
type PageHook func(c Canvas, page int)

// Recorder is a Canvas that records commands. It is not safe for concurrent
// use; create one per document. The first drawing error is kept and returned
// from Finalize.
type Recorder struct {
	metrics    Metrics
	geo        Geometry
	pages      []Page
	bottom     float64
	state      State
	stack      []State
	hooks      []PageHook
	decorating bool
	done       bool
	err        error
}

// NewRecorder creates an empty recorder. Call NewPage before drawing.
func NewRecorder(m Metrics, g Geometry) *Recorder {
	return &Recorder{
		metrics: m,
		geo:     g,
		state:   State{Stroke: Black, Fill: Black, LineWidth: 0.2},
	}
}

// OnNewPage registers a hook run after every NewPage. Hook drawing does not
// move CurrentY and the hook's graphics state is discarded afterward.
func (r *Recorder) OnNewPage(h PageHook) { r.hooks = append(r.hooks, h) }

// Geometry returns the page geometry.
func (r *Recorder) Geometry() Geometry { return r.geo }

// Err returns the first recorded error.
func (r *Recorder) Err() error { return r.err }

func (r *Recorder) setErr(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Finalize stops recording and returns the layout.
func (r *Recorder) Finalize() (*PageLayout, error) {
	if r.done {
		return nil, ErrFinalized
	}
	r.done = true
	if len(r.stack) != 0 {
		r.setErr(fmt.Errorf("%w: %d unmatched save", ErrUnbalancedRestore, len(r.stack)))
	}
	if r.err != nil {
		return nil, r.err
	}
	return &PageLayout{Width: r.geo.Width, Height: r.geo.Height, Pages: r.pages}, nil
}

func (r *Recorder) NewPage() {
	if r.done {
		r.setErr(ErrFinalized)
		return
	}
	if r.decorating {
		return
	}
	r.pages = append(r.pages, Page{Index: len(r.pages)})
	r.bottom = r.geo.Margins.Top
	if len(r.hooks) == 0 {
		return
	}
	r.decorating = true
	saved, depth := r.state, len(r.stack)
	for _, h := range r.hooks {
		h(r, len(r.pages)-1)
	}
	if len(r.stack) != depth {
		r.setErr(fmt.Errorf("%w: page hook left %d states", ErrUnbalancedRestore, len(r.stack)-depth))
		r.stack = r.stack[:min(depth, len(r.stack))]
	}
	r.state = saved
	r.decorating = false
}

func (r *Recorder) PageIndex() int { return len(r.pages) - 1 }

func (r *Recorder) CurrentY() float64 { return r.bottom }

func (r *Recorder) PageContentHeight() float64 {
	return r.geo.Height - r.geo.Margins.Top - r.geo.Margins.Bottom
}

func (r *Recorder) PageContentWidth() float64 {
	return r.geo.Width - r.geo.Margins.Left - r.geo.Margins.Right
}

func (r *Recorder) Save() { r.stack = append(r.stack, r.state) }

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		r.setErr(ErrUnbalancedRestore)
		return
	}
	r.state = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) SetStrokeColor(c Color) { r.state.Stroke = c }
func (r *Recorder) SetFillColor(c Color)   { r.state.Fill = c }
func (r *Recorder) SetLineWidth(w float64) { r.state.LineWidth = w }

// emit appends cmd to the current page; bottom is the lowest y it covers.
func (r *Recorder) emit(cmd Command, bottom float64) {
	switch {
	case r.done:
		r.setErr(ErrFinalized)
		return
	case len(r.pages) == 0:
		r.setErr(ErrNoPage)
		return
	}
	if cmd.Kind != KindText {
		cmd.State = r.state
	}
	p := &r.pages[len(r.pages)-1]
	p.Commands = append(p.Commands, cmd)
	r.extend(bottom)
}

func (r *Recorder) extend(bottom float64) {
	if !r.decorating && len(r.pages) > 0 && bottom > r.bottom {
		r.bottom = bottom
	}
}

func (r *Recorder) DrawLine(x1, y1, x2, y2 float64) {
	r.emit(Command{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: true}, max(y1, y2))
}

func (r *Recorder) DrawRect(x, y, w, h float64, filled bool) {
	r.emit(Command{Kind: KindRect, X: x, Y: y, W: w, H: h, Fill: filled, Stroke: !filled}, y+h)
}

func (r *Recorder) DrawCircle(cx, cy, rad float64, filled bool) {
	r.emit(Command{Kind: KindCircle, X: cx, Y: cy, R: rad, Fill: filled, Stroke: !filled}, cy+rad)
}

func (r *Recorder) lines(run Run, st Style, maxWidth float64) ([][]Word, lineMetrics) {
	lm := r.lineMetrics(run.Font, st)
	return wrap(r.resolve(run), lm, maxWidth-2*st.Padding), lm
}

func (r *Recorder) MeasureText(run Run, st Style, maxWidth float64) (float64, int) {
	lines, _ := r.lines(run, st, maxWidth)
	return float64(len(lines))*st.LineHeight + 2*st.Padding, len(lines)
}

func (r *Recorder) WrapText(run Run, st Style, maxWidth float64) []Run {
	lines, _ := r.lines(run, st, maxWidth)
	out := make([]Run, len(lines))
	for i, l := range lines {
		out[i] = Run{Text: lineText(l), Words: l, Font: run.Font, RTL: run.RTL}
	}
	return out
}

// DrawText paints the optional background and border of box, then the
// wrapped run centred vertically in it.
func (r *Recorder) DrawText(box Box, run Run, st Style) {
	lines, lm := r.lines(run, st, box.W)
	if box.MaxLines > 0 && len(lines) > box.MaxLines {
		lines = lines[:box.MaxLines]
	}
	textH := float64(len(lines)) * st.LineHeight
	h := box.H
	if h == 0 {
		h = textH + 2*st.Padding
	}
	if box.Fill {
		r.emit(Command{Kind: KindRect, X: box.X, Y: box.Y, W: box.W, H: h, Fill: true}, box.Y+h)
	}
	if box.Border {
		r.emit(Command{Kind: KindRect, X: box.X, Y: box.Y, W: box.W, H: h, Stroke: true}, box.Y+h)
	}

	align := box.Align
	if align == AlignStart {
		align = AlignLeft
		if run.RTL {
			align = AlignRight
		}
	}
	asc := r.metrics.Ascent(run.Font) * lm.scale
	desc := r.metrics.Descent(run.Font) * lm.scale
	top := box.Y + max(st.Padding, (h-textH)/2)
	textState := r.state
	textState.Fill = st.Color
	for i, words := range lines {
		if len(words) == 0 {
			continue
		}
		visual := visualOrder(words)
		w := lineWidth(visual, lm)
		var x float64
		switch align {
		case AlignRight:
			x = box.X + box.W - st.Padding - w
		case AlignCenter:
			x = box.X + (box.W-w)/2
		default:
			x = box.X + st.Padding
		}
		baseline := top + float64(i)*st.LineHeight + (st.LineHeight-(asc+desc))/2 + asc
		r.emit(Command{
			Kind:   KindText,
			X:      x,
			Y:      baseline,
			Font:   run.Font,
			Size:   st.Size,
			Glyphs: joinGlyphs(visual, lm.space),
			Text:   lineText(words),
			State:  textState,
		}, box.Y+h)
	}
	// Unbordered boxes still occupy their area.
	r.extend(box.Y + h)
}

func joinGlyphs(words []Word, space []Glyph) []Glyph {
	var out []Glyph
	for i, w := range words {
		if i > 0 {
			out = append(out, space...)
		}
		out = append(out, w.Glyphs...)
	}
	return slices.Clip(out)
}

// Package layout arranges score tables into a paginated multi-column grid.
package layout

import (
	"strings"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/score"
)

// Cursor is the position where the next block starts.
type Cursor struct {
	X, Y float64
	Page int
}

// Styles groups the text styles and colours of a table.
type Styles struct {
	Title     canvas.Style
	Header    canvas.Style
	Item      canvas.Style
	Continues canvas.Style

	TitleFill  canvas.Color
	HeaderFill canvas.Color
	// SymbolColors is the marker colour per score.
	SymbolColors map[score.Value]canvas.Color
	// SymbolSize is the side of the marker box, in mm.
	SymbolSize float64
}

// DefaultStyles returns the stock table look.
func DefaultStyles() Styles {
	return Styles{
		Title:      canvas.Style{Size: 12, LineHeight: 6, Padding: 1.5},
		Header:     canvas.Style{Size: 9, LineHeight: 4.5, Padding: 1},
		Item:       canvas.Style{Size: 8, LineHeight: 4, Padding: 1},
		Continues:  canvas.Style{Size: 7, LineHeight: 4, Padding: 1, Color: canvas.Color{R: 0.45, G: 0.45, B: 0.45}},
		TitleFill:  canvas.Color{R: 0.80, G: 0.86, B: 0.95},
		HeaderFill: canvas.Color{R: 0.90, G: 0.93, B: 0.97},
		SymbolColors: map[score.Value]canvas.Color{
			score.Acquired:    {R: 0.13, G: 0.55, B: 0.13},
			score.InProgress:  {R: 0.95, G: 0.61, B: 0.07},
			score.NotAcquired: {R: 0.80, G: 0.13, B: 0.13},
		},
		SymbolSize: 3,
	}
}

// Engine lays out TableSpecs on a canvas. It keeps no position between
// calls; the cursor is passed in and returned.
type Engine struct {
	c  canvas.Canvas
	sh canvas.Shaper

	Margins       canvas.Margins
	HeaderHeight  float64
	OverflowY     float64
	ContentBottom float64
	BatchGap      float64
	// HeaderKeep is the room, below a header row, that must remain above
	// OverflowY for the header to stay on the current page.
	HeaderKeep float64
	Styles     Styles
	RTL        bool
	Continues  string

	log observability.Logger
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithMargins sets the page margins.
func WithMargins(m canvas.Margins) Option {
	return func(e *Engine) {
		e.Margins = m
	}
}

// WithHeaderHeight sets the minimum height of header cells. A label that
// wraps past it raises the whole header row.
func WithHeaderHeight(h float64) Option {
	return func(e *Engine) {
		e.HeaderHeight = h
	}
}

// WithOverflowY sets the y past which a column is truncated.
func WithOverflowY(y float64) Option {
	return func(e *Engine) {
		e.OverflowY = y
	}
}

// WithContentBottom sets the lowest y a header row may reach.
func WithContentBottom(y float64) Option {
	return func(e *Engine) {
		e.ContentBottom = y
	}
}

// WithBatchGap sets the vertical gap after each batch.
func WithBatchGap(g float64) Option {
	return func(e *Engine) {
		e.BatchGap = g
	}
}

// WithHeaderKeep keeps a header row together with at least h mm of content.
func WithHeaderKeep(h float64) Option {
	return func(e *Engine) {
		e.HeaderKeep = h
	}
}

// WithStyles sets the table styles.
func WithStyles(s Styles) Option {
	return func(e *Engine) {
		e.Styles = s
	}
}

// WithRTL mirrors the grid: the first column is the rightmost and labels sit
// right of their symbols.
func WithRTL(rtl bool) Option {
	return func(e *Engine) {
		e.RTL = rtl
	}
}

// WithContinuesLabel sets the text of the truncation placeholder.
func WithContinuesLabel(s string) Option {
	return func(e *Engine) {
		e.Continues = s
	}
}

// WithLogger sets the logger used for recoverable problems.
func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates a layout engine drawing on c. A nil shaper draws every
// label unshaped.
func NewEngine(c canvas.Canvas, sh canvas.Shaper, opts ...Option) *Engine {
	e := &Engine{
		c:            c,
		sh:           sh,
		Margins:      canvas.A4().Margins,
		HeaderHeight: 9,
		OverflowY:    270,
		BatchGap:     5,
		Styles:       DefaultStyles(),
		Continues:    "... continues",
		log:          observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ContentBottom == 0 {
		e.ContentBottom = e.Margins.Top + c.PageContentHeight()
	}
	return e
}

// Shape runs text through the shaper, falling back to the unshaped run when
// shaping fails or yields nothing.
func (e *Engine) Shape(text string, font canvas.FontID) canvas.Run {
	return ShapeOrRaw(e.sh, e.log, text, font, e.RTL)
}

// ShapeOrRaw shapes text with sh and degrades to canvas.RawRun on failure.
func ShapeOrRaw(sh canvas.Shaper, log observability.Logger, text string, font canvas.FontID, rtl bool) canvas.Run {
	if sh != nil {
		run, err := sh.Shape(text, font)
		if err == nil && (!run.Empty() || strings.TrimSpace(text) == "") {
			return run
		}
		if err == nil {
			err = errEmptyShape
		}
		log.Warn("text shaping failed, drawing unshaped",
			observability.String("text", text),
			observability.String("font", font.String()),
			observability.Error("error", err))
	}
	run := canvas.RawRun(text, font)
	run.RTL = rtl
	return run
}

// newPage starts a page and moves the cursor to its top.
func (e *Engine) newPage(cur Cursor) Cursor {
	e.c.NewPage()
	cur.Y = e.Margins.Top
	cur.Page = e.c.PageIndex()
	return cur
}

// ensureRoom starts a new page when a block of height h does not fit above
// the content bottom.
func (e *Engine) ensureRoom(cur Cursor, h float64) Cursor {
	if cur.Y+h > e.ContentBottom {
		return e.newPage(cur)
	}
	return cur
}

// Package canvas defines the drawing and measurement boundary the layout
// code targets, together with Recorder, an implementation that records
// draw commands per page into a PageLayout.
//
// Units are millimetres with the origin at the top-left corner of the page
// and y growing downward. Font sizes are in points.
package canvas

import "errors"

// PtToMM converts typographic points to millimetres.
const PtToMM = 25.4 / 72

var (
	// ErrUnbalancedRestore is recorded when Restore has no matching Save.
	ErrUnbalancedRestore = errors.New("canvas: restore without matching save")
	// ErrNoPage is recorded when drawing happens before the first NewPage.
	ErrNoPage = errors.New("canvas: draw before first page")
	// ErrFinalized is recorded when drawing happens after Finalize.
	ErrFinalized = errors.New("canvas: recorder already finalized")
	// ErrUnknownFont is recorded when a style references a font without metrics.
	ErrUnknownFont = errors.New("canvas: unknown font")
)

// FontID selects one face of the font set.
type FontID int

const (
	FontRegular FontID = iota
	FontBold
)

func (f FontID) String() string {
	if f == FontBold {
		return "bold"
	}
	return "regular"
}

// Color is an RGB colour with components in [0,1].
type Color struct {
	R, G, B float64
}

var (
	Black = Color{}
	White = Color{1, 1, 1}
)

// Align is the horizontal placement of text inside a box.
type Align int

const (
	// AlignStart resolves to right for right-to-left runs, left otherwise.
	AlignStart Align = iota
	AlignCenter
	AlignLeft
	AlignRight
)

// Style carries the typographic parameters of a text draw.
type Style struct {
	// Size in points.
	Size float64
	// LineHeight is the advance between wrapped lines, in mm.
	LineHeight float64
	// Padding is the inner gap on every side of the box, in mm.
	Padding float64
	Color   Color
}

// Box is the cell a text run is drawn into. A zero H means "as tall as the
// wrapped text". MaxLines clips the wrapped text; zero means unlimited.
type Box struct {
	X, Y, W, H float64
	Align      Align
	Border     bool
	Fill       bool
	MaxLines   int
}

// Glyph is a positioned glyph of a shaped word.
type Glyph struct {
	ID int
	// Advance in 1/1000 em.
	Advance float64
	// Runes are the source characters the glyph stands for, used for the
	// text extraction map. Empty for glyphs continuing a cluster.
	Runes []rune
}

// Word is a space-free unit of a run. Glyphs are in visual order; a word
// without glyphs is mapped through the font cmap at draw time.
type Word struct {
	Text   string
	Glyphs []Glyph
	// Level is the bidi embedding level: odd levels read right to left.
	Level uint8
}

// RTL reports whether the word reads right to left.
func (w Word) RTL() bool { return w.Level%2 == 1 }

// Run is a line-breakable sequence of words in logical order.
type Run struct {
	Text  string
	Words []Word
	Font  FontID
	// RTL is the paragraph base direction.
	RTL bool
}

// Empty reports whether the run has no visible words.
func (r Run) Empty() bool { return len(r.Words) == 0 }

// Canvas is the drawing primitive set used by layout, symbols and
// composition.
type Canvas interface {
	// MeasureText returns the height of the run wrapped to maxWidth,
	// including padding, and the number of lines.
	MeasureText(run Run, st Style, maxWidth float64) (height float64, lines int)
	// WrapText splits the run into lines no wider than maxWidth minus
	// padding. Each returned run is one line in logical order.
	WrapText(run Run, st Style, maxWidth float64) []Run
	DrawText(box Box, run Run, st Style)
	DrawLine(x1, y1, x2, y2 float64)
	DrawRect(x, y, w, h float64, filled bool)
	DrawCircle(cx, cy, r float64, filled bool)
	NewPage()
	// CurrentY is the lowest point drawn on the current page by content,
	// or the top margin on a fresh page.
	CurrentY() float64
	// PageIndex is the zero-based index of the current page.
	PageIndex() int
	PageContentHeight() float64
	PageContentWidth() float64
	Save()
	Restore()
	SetStrokeColor(c Color)
	SetFillColor(c Color)
	SetLineWidth(w float64)
}

// Shaper converts a logical string into a displayable run.
type Shaper interface {
	Shape(text string, font FontID) (Run, error)
}

// Metrics supplies font measurements to the Recorder.
type Metrics interface {
	// Glyphs returns the glyphs of w: its own when shaped, the font's
	// nominal mapping otherwise.
	Glyphs(w Word, font FontID) ([]Glyph, error)
	// Ascent and Descent are in 1/1000 em, both positive.
	Ascent(font FontID) float64
	Descent(font FontID) float64
}

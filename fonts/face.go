package fonts

import (
	"errors"
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/ir/semantic"
)

// ErrShaping marks a failed shaping call. Callers fall back to canvas.RawRun.
var ErrShaping = errors.New("fonts: shaping failed")

// DefaultRegular and DefaultBold return the bundled Go fonts.
func DefaultRegular() []byte { return goregular.TTF }
func DefaultBold() []byte    { return gobold.TTF }

// Face is one parsed font: the PDF resource plus the cmap used for unshaped
// text. A Face is not safe for concurrent use.
type Face struct {
	Name string
	PDF  *semantic.Font
	data []byte
	sf   *sfnt.Font
	buf  sfnt.Buffer
}

// NewFace parses TrueType data.
func NewFace(name string, data []byte) (*Face, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	pdf, err := type0(name, data, sf)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return &Face{Name: name, PDF: pdf, data: data, sf: sf}, nil
}

// Data returns the raw font program.
func (f *Face) Data() []byte { return f.data }

// Nominal maps each rune of text to its glyph through the cmap. Runes the
// font lacks map to glyph 0.
func (f *Face) Nominal(text string) []canvas.Glyph {
	out := make([]canvas.Glyph, 0, len(text))
	for _, r := range text {
		gid, err := f.sf.GlyphIndex(&f.buf, r)
		if err != nil {
			gid = 0
		}
		out = append(out, canvas.Glyph{
			ID:      int(gid),
			Advance: float64(f.Advance(int(gid))),
			Runes:   []rune{r},
		})
	}
	return out
}

// Advance is the nominal width of a glyph in 1/1000 em.
func (f *Face) Advance(gid int) int {
	if w, ok := f.PDF.Widths[gid]; ok {
		return w
	}
	return f.PDF.DescendantFont.DW
}

// Ascent and Descent are in 1/1000 em, both positive.
func (f *Face) Ascent() float64  { return f.PDF.Descriptor.Ascent }
func (f *Face) Descent() float64 { return -f.PDF.Descriptor.Descent }

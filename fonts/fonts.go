package fonts

import (
	"errors"
	"fmt"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/reportcard/ir/semantic"
)

// LoadTrueType parses a TrueType font and returns it as a Type0 Identity-H
// resource: character codes are glyph indices and widths are keyed by glyph
// index in 1/1000 em. The whole program is embedded.
func LoadTrueType(name string, data []byte) (*semantic.Font, error) {
	if len(data) == 0 {
		return nil, errors.New("truetype font data is empty")
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	return type0(name, data, sf)
}

// em converts font units at a one-em ppem to 1/1000 em.
type em struct {
	buf  sfnt.Buffer
	ppem fixed.Int26_6
	upem float64
}

func (e *em) scale(v fixed.Int26_6) float64 { return float64(v) * 1000 / (64 * e.upem) }

func type0(name string, data []byte, sf *sfnt.Font) (*semantic.Font, error) {
	upem := sf.UnitsPerEm()
	if upem == 0 {
		return nil, errors.New("invalid unitsPerEm")
	}
	e := &em{ppem: fixed.Int26_6(upem) << 6, upem: float64(upem)}

	base := strings.TrimSpace(name)
	if ps, err := sf.Name(&e.buf, sfnt.NameIDPostScript); err == nil && ps != "" {
		base = ps
	}
	if base == "" {
		base = "CustomTT"
	}

	widths := make(map[int]int, sf.NumGlyphs())
	for gid := 0; gid < sf.NumGlyphs(); gid++ {
		adv, err := sf.GlyphAdvance(&e.buf, sfnt.GlyphIndex(gid), e.ppem, xfont.HintingNone)
		if err == nil {
			widths[gid] = int(math.Round(e.scale(adv)))
		}
	}
	dw := widths[0]
	if dw == 0 {
		dw = 1000
	}

	m, _ := sf.Metrics(&e.buf, e.ppem, xfont.HintingNone)
	bb, _ := sf.Bounds(&e.buf, e.ppem, xfont.HintingNone)
	capHeight := m.CapHeight
	if capHeight == 0 {
		capHeight = m.Ascent
	}
	var italic float64
	if post := sf.PostTable(); post != nil {
		italic = post.ItalicAngle
	}
	// sfnt bounds are y-down; the PDF box is y-up.
	fd := &semantic.FontDescriptor{
		FontName:     base,
		Flags:        4, // symbolic: glyphs are addressed by index
		ItalicAngle:  italic,
		Ascent:       e.scale(m.Ascent),
		Descent:      -e.scale(m.Descent),
		CapHeight:    e.scale(capHeight),
		StemV:        80,
		FontBBox:     [4]float64{e.scale(bb.Min.X), -e.scale(bb.Max.Y), e.scale(bb.Max.X), -e.scale(bb.Min.Y)},
		FontFile:     data,
		FontFileType: "FontFile2",
	}
	csi := semantic.CIDSystemInfo{Registry: "Adobe", Ordering: "Identity"}
	return &semantic.Font{
		Subtype:       "Type0",
		BaseFont:      base,
		Encoding:      "Identity-H",
		Widths:        widths,
		CIDSystemInfo: &csi,
		DescendantFont: &semantic.CIDFont{
			Subtype:         "CIDFontType2",
			BaseFont:        base,
			CIDSystemInfo:   csi,
			DW:              dw,
			W:               widths,
			CIDToGIDMapName: "Identity",
			Descriptor:      fd,
		},
		Descriptor: fd,
	}, nil
}

// Package builder assembles semantic PDF pages from drawing calls expressed
// in PDF user space (points, origin bottom left).
package builder

import (
	"fmt"

	"github.com/wudi/reportcard/contentstream"
	"github.com/wudi/reportcard/fonts"
	"github.com/wudi/reportcard/ir/semantic"
)

// PDFBuilder collects pages, fonts and metadata for one document.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	SetLanguage(lang string) PDFBuilder
	RegisterFont(name string, font *semantic.Font) PDFBuilder
	RegisterTrueTypeFont(name string, data []byte) PDFBuilder
	Build() (*semantic.Document, error)
}

// PageBuilder appends drawing operations to one page.
type PageBuilder interface {
	DrawGlyphs(glyphs []Glyph, x, y float64, opts TextOptions) PageBuilder
	DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts PathOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	DrawCircle(cx, cy, r float64, opts PathOptions) PageBuilder
	Finish() PDFBuilder
}

// Glyph is one positioned glyph of a shaped run. ID is the glyph index, which
// is also the character code under Identity-H. Advance is the shaped advance
// in 1/1000 em; Runes are the characters it stands for in ToUnicode.
type Glyph struct {
	ID      int
	Advance float64
	Runes   []rune
}

type TextOptions struct {
	Font     string // resource name, empty for the first registered font
	FontSize float64
	Color    Color
}

// PathOptions selects how a closed shape is painted. A shape with neither
// Fill nor Stroke set is stroked.
type PathOptions struct {
	Fill        bool
	Stroke      bool
	FillColor   Color
	StrokeColor Color
	Style       contentstream.Stroke
}

type LineOptions struct {
	Color Color
	Style contentstream.Stroke
}

// Color is a DeviceRGB color with components in [0,1].
type Color struct {
	R, G, B float64
}

type docBuilder struct {
	pages    []*semantic.Page
	info     *semantic.DocumentInfo
	lang     string
	fonts    map[string]*semantic.Font
	fallback string
	err      error
}

type pageBuilder struct {
	doc  *docBuilder
	page *semantic.Page
	ops  contentstream.Ops
}

// NewBuilder constructs a PDFBuilder.
func NewBuilder() PDFBuilder { return &docBuilder{fonts: make(map[string]*semantic.Font)} }

func (b *docBuilder) NewPage(w, h float64) PageBuilder {
	p := &semantic.Page{
		MediaBox:  semantic.Rectangle{URX: w, URY: h},
		Resources: &semantic.Resources{Fonts: make(map[string]*semantic.Font)},
		Contents:  []semantic.ContentStream{{}},
	}
	b.pages = append(b.pages, p)
	return &pageBuilder{doc: b, page: p}
}

func (b *docBuilder) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *docBuilder) SetLanguage(lang string) PDFBuilder {
	b.lang = lang
	return b
}

// RegisterFont adds a Type0 font under a resource name. The builder fills the
// font's ToUnicode map from the glyphs drawn with it, so callers sharing a
// font between documents should register a copy.
func (b *docBuilder) RegisterFont(name string, font *semantic.Font) PDFBuilder {
	switch {
	case font == nil:
	case font.Subtype != "Type0" || font.Encoding != "Identity-H":
		b.fail(fmt.Errorf("font %s: only Type0 Identity-H fonts are supported", name))
	default:
		b.fonts[name] = font
		if b.fallback == "" {
			b.fallback = name
		}
	}
	return b
}

func (b *docBuilder) RegisterTrueTypeFont(name string, data []byte) PDFBuilder {
	font, err := fonts.LoadTrueType(name, data)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.RegisterFont(name, font)
}

// fail keeps the first error; Build reports it.
func (b *docBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *docBuilder) Build() (*semantic.Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{Pages: b.pages, Info: b.info, Lang: b.lang}, nil
}

// emit runs fn inside a q/Q pair and stores the page's operations.
func (p *pageBuilder) emit(fn func(o *contentstream.Ops)) PageBuilder {
	p.ops.Saved(func() { fn(&p.ops) })
	p.page.Contents[0].Operations = p.ops
	return p
}

// DrawGlyphs shows glyphs starting at the baseline origin (x, y). Differences
// between a glyph's shaped advance and the font's nominal width are written as
// TJ adjustments so kerning and mark positioning survive.
func (p *pageBuilder) DrawGlyphs(glyphs []Glyph, x, y float64, opts TextOptions) PageBuilder {
	if len(glyphs) == 0 {
		return p
	}
	name := opts.Font
	if name == "" {
		name = p.doc.fallback
	}
	font := p.doc.fonts[name]
	if font == nil {
		p.doc.fail(fmt.Errorf("draw glyphs: font %q is not registered", opts.Font))
		return p
	}
	p.page.Resources.Fonts[name] = font
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}
	recordGlyphs(font, glyphs)
	return p.emit(func(o *contentstream.Ops) {
		o.Emit("BT")
		o.EmitOperands("Tf", semantic.NameOperand{Value: name}, semantic.NumberOperand{Value: size})
		o.Emit("Tm", 1, 0, 0, 1, x, y)
		fillColor(o, opts.Color)
		o.EmitOperands("TJ", showArray(font, glyphs))
		o.Emit("ET")
	})
}

func (p *pageBuilder) DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder {
	if path == nil {
		return p
	}
	return p.shape(opts, func(o *contentstream.Ops) { o.Path(path) })
}

func (p *pageBuilder) DrawRectangle(x, y, width, height float64, opts PathOptions) PageBuilder {
	return p.shape(opts, func(o *contentstream.Ops) { o.Emit("re", x, y, width, height) })
}

func (p *pageBuilder) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	return p.DrawPath(contentstream.Line(x1, y1, x2, y2), PathOptions{
		Stroke:      true,
		StrokeColor: opts.Color,
		Style:       opts.Style,
	})
}

// DrawCircle approximates a circle with four Bézier curves.
func (p *pageBuilder) DrawCircle(cx, cy, r float64, opts PathOptions) PageBuilder {
	return p.DrawPath(contentstream.Circle(cx, cy, r), opts)
}

func (p *pageBuilder) shape(opts PathOptions, construct func(o *contentstream.Ops)) PageBuilder {
	stroke := opts.Stroke || !opts.Fill
	return p.emit(func(o *contentstream.Ops) {
		if opts.Fill {
			fillColor(o, opts.FillColor)
		}
		if stroke {
			o.Emit("RG", opts.StrokeColor.R, opts.StrokeColor.G, opts.StrokeColor.B)
			o.StrokeState(opts.Style)
		}
		construct(o)
		o.Emit(contentstream.Paint(opts.Fill, stroke))
	})
}

func (p *pageBuilder) Finish() PDFBuilder { return p.doc }

func fillColor(o *contentstream.Ops, c Color) { o.Emit("rg", c.R, c.G, c.B) }

// recordGlyphs adds the glyphs' characters to the font's ToUnicode map. The
// first mapping seen for a glyph wins.
func recordGlyphs(font *semantic.Font, glyphs []Glyph) {
	if font.ToUnicode == nil {
		font.ToUnicode = make(map[int][]rune)
	}
	for _, g := range glyphs {
		if _, seen := font.ToUnicode[g.ID]; seen || len(g.Runes) == 0 {
			continue
		}
		font.ToUnicode[g.ID] = append([]rune(nil), g.Runes...)
	}
}

// nominalWidth is the width a viewer advances by for gid without adjustment.
func nominalWidth(font *semantic.Font, gid int) float64 {
	if w, ok := font.Widths[gid]; ok {
		return float64(w)
	}
	if font.DescendantFont != nil && font.DescendantFont.DW > 0 {
		return float64(font.DescendantFont.DW)
	}
	return 1000
}

// showArray builds the TJ operand: runs of two-byte glyph codes separated by
// adjustments in thousandths of text space (positive moves left).
func showArray(font *semantic.Font, glyphs []Glyph) semantic.ArrayOperand {
	var items []semantic.Operand
	var run []byte
	flush := func() {
		if len(run) > 0 {
			items = append(items, semantic.StringOperand{Value: run, Hex: true})
			run = nil
		}
	}
	for _, g := range glyphs {
		run = append(run, byte(g.ID>>8), byte(g.ID))
		if adj := nominalWidth(font, g.ID) - g.Advance; adj <= -0.5 || adj >= 0.5 {
			flush()
			items = append(items, semantic.NumberOperand{Value: adj})
		}
	}
	flush()
	return semantic.ArrayOperand{Values: items}
}

// Package render turns a finalized canvas.PageLayout into PDF bytes.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wudi/reportcard/builder"
	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/contentstream"
	"github.com/wudi/reportcard/coords"
	"github.com/wudi/reportcard/fonts"
	"github.com/wudi/reportcard/ir/semantic"
	"github.com/wudi/reportcard/writer"
)

// ErrEmptyLayout is returned for a layout without pages.
var ErrEmptyLayout = errors.New("render: layout has no pages")

// Config controls the PDF output.
type Config struct {
	// Compression is a compress/flate level; zero disables compression.
	Compression   int
	Deterministic bool
	// Lang is the document's natural language, e.g. "ar".
	Lang string
	// Subset embeds only the glyphs the layout draws.
	Subset bool
	// Interceptors observe every indirect object the writer emits.
	Interceptors []writer.Interceptor
}

// PDF replays every recorded command into a PDF document. Fonts are embedded
// whole unless cfg.Subset is set; their ToUnicode maps come from the glyphs
// actually drawn. The Set's faces are not modified.
func PDF(ctx context.Context, layout *canvas.PageLayout, set *fonts.Set, info *semantic.DocumentInfo, cfg Config) ([]byte, error) {
	doc, err := Document(ctx, layout, set, info, cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	wcfg := writer.Config{Compression: cfg.Compression, Deterministic: cfg.Deterministic}
	wb := &writer.WriterBuilder{}
	for _, ic := range cfg.Interceptors {
		wb.WithInterceptor(ic)
	}
	if err := wb.Build().Write(ctx, doc, &buf, wcfg); err != nil {
		return nil, fmt.Errorf("render: write: %w", err)
	}
	return buf.Bytes(), nil
}

// Document builds the semantic PDF model for layout without serializing it.
func Document(ctx context.Context, layout *canvas.PageLayout, set *fonts.Set, info *semantic.DocumentInfo, cfg Config) (*semantic.Document, error) {
	if layout == nil || len(layout.Pages) == 0 {
		return nil, ErrEmptyLayout
	}
	b := builder.NewBuilder().SetInfo(info).SetLanguage(cfg.Lang)
	var used map[canvas.FontID]map[int]bool
	if cfg.Subset {
		used = usedGlyphs(layout)
	}
	for _, id := range set.IDs() {
		face, err := set.Face(id)
		if err != nil {
			return nil, err
		}
		font := documentFont(face.PDF)
		if cfg.Subset {
			if font, err = subsetFont(font, face.Data(), used[id]); err != nil {
				return nil, fmt.Errorf("render: subset %s: %w", id, err)
			}
		}
		b.RegisterFont(resourceName(id), font)
	}
	m := coords.Page(layout.Height)
	for _, p := range layout.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pb := b.NewPage(coords.Length(layout.Width), coords.Length(layout.Height))
		for _, cmd := range p.Commands {
			replay(pb, m, cmd)
		}
	}
	doc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("render: build: %w", err)
	}
	return doc, nil
}

func replay(pb builder.PageBuilder, m coords.Matrix, cmd canvas.Command) {
	st := cmd.State
	switch cmd.Kind {
	case canvas.KindText:
		pt := m.Transform(coords.Point{X: cmd.X, Y: cmd.Y})
		pb.DrawGlyphs(glyphs(cmd.Glyphs), pt.X, pt.Y, builder.TextOptions{
			Font:     resourceName(cmd.Font),
			FontSize: cmd.Size,
			Color:    color(st.Fill),
		})
	case canvas.KindLine:
		a := m.Transform(coords.Point{X: cmd.X, Y: cmd.Y})
		b := m.Transform(coords.Point{X: cmd.X2, Y: cmd.Y2})
		pb.DrawLine(a.X, a.Y, b.X, b.Y, builder.LineOptions{
			Color: color(st.Stroke),
			Style: contentstream.Stroke{Width: coords.Length(st.LineWidth)},
		})
	case canvas.KindRect:
		ll := m.Transform(coords.Point{X: cmd.X, Y: cmd.Y + cmd.H})
		pb.DrawRectangle(ll.X, ll.Y, coords.Length(cmd.W), coords.Length(cmd.H), pathOptions(cmd))
	case canvas.KindCircle:
		c := m.Transform(coords.Point{X: cmd.X, Y: cmd.Y})
		pb.DrawCircle(c.X, c.Y, coords.Length(cmd.R), pathOptions(cmd))
	}
}

func pathOptions(cmd canvas.Command) builder.PathOptions {
	return builder.PathOptions{
		Fill:        cmd.Fill,
		Stroke:      cmd.Stroke,
		FillColor:   color(cmd.State.Fill),
		StrokeColor: color(cmd.State.Stroke),
		Style:       contentstream.Stroke{Width: coords.Length(cmd.State.LineWidth)},
	}
}

func glyphs(in []canvas.Glyph) []builder.Glyph {
	out := make([]builder.Glyph, len(in))
	for i, g := range in {
		out[i] = builder.Glyph{ID: g.ID, Advance: g.Advance, Runes: g.Runes}
	}
	return out
}

func color(c canvas.Color) builder.Color { return builder.Color{R: c.R, G: c.G, B: c.B} }

func resourceName(id canvas.FontID) string { return fmt.Sprintf("F%d", int(id)+1) }

// documentFont copies f so the builder can fill in ToUnicode without touching
// the shared face.
func documentFont(f *semantic.Font) *semantic.Font {
	cp := *f
	cp.ToUnicode = nil
	return &cp
}

func usedGlyphs(layout *canvas.PageLayout) map[canvas.FontID]map[int]bool {
	used := make(map[canvas.FontID]map[int]bool)
	for _, p := range layout.Pages {
		for _, cmd := range p.Commands {
			if cmd.Kind != canvas.KindText {
				continue
			}
			m := used[cmd.Font]
			if m == nil {
				m = make(map[int]bool)
				used[cmd.Font] = m
			}
			for _, g := range cmd.Glyphs {
				m[g.ID] = true
			}
		}
	}
	return used
}

// subsetFont replaces the embedded program of f, a private copy, with a
// subset holding the used glyphs. Widths shrink to the same glyphs and the
// font is renamed with its subset tag.
func subsetFont(f *semantic.Font, data []byte, used map[int]bool) (*semantic.Font, error) {
	sub, err := fonts.Subset(data, used)
	if err != nil {
		return nil, err
	}
	name := fonts.SubsetTag(used) + "+" + f.BaseFont
	widths := make(map[int]int, len(used))
	for gid := range used {
		if w, ok := f.Widths[gid]; ok {
			widths[gid] = w
		}
	}
	var desc *semantic.FontDescriptor
	if f.Descriptor != nil {
		d := *f.Descriptor
		d.FontName = name
		d.FontFile = sub
		desc = &d
	}
	f.BaseFont = name
	f.Widths = widths
	f.Descriptor = desc
	if f.DescendantFont != nil {
		cid := *f.DescendantFont
		cid.BaseFont = name
		cid.W = widths
		cid.Descriptor = desc
		f.DescendantFont = &cid
	}
	return f, nil
}

package writer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wudi/reportcard/ir/raw"
	"github.com/wudi/reportcard/ir/semantic"
)

// objectBuilder numbers and collects the indirect objects of one document.
type objectBuilder struct {
	doc     *semantic.Document
	cfg     Config
	objects map[raw.ObjectRef]raw.Object
	next    int

	fonts map[*semantic.Font]raw.ObjectRef
}

func newObjectBuilder(doc *semantic.Document, cfg Config) *objectBuilder {
	return &objectBuilder{
		doc:     doc,
		cfg:     cfg,
		objects: make(map[raw.ObjectRef]raw.Object),
		next:    1,
		fonts:   make(map[*semantic.Font]raw.ObjectRef),
	}
}

func (b *objectBuilder) reserve() raw.ObjectRef {
	ref := raw.ObjectRef{Num: b.next}
	b.next++
	return ref
}

func (b *objectBuilder) add(obj raw.Object) raw.ObjectRef {
	ref := b.reserve()
	b.objects[ref] = obj
	return ref
}

// build returns every indirect object with the catalog and the optional info
// dictionary references.
func (b *objectBuilder) build(ctx context.Context) (map[raw.ObjectRef]raw.Object, raw.ObjectRef, *raw.ObjectRef, error) {
	catalogRef := b.reserve()
	pagesRef := b.reserve()
	info := b.info()

	var kids raw.Array
	for _, p := range b.doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, raw.ObjectRef{}, nil, err
		}
		ref, err := b.page(p, pagesRef)
		if err != nil {
			return nil, raw.ObjectRef{}, nil, fmt.Errorf("page %d: %w", p.Index, err)
		}
		kids = append(kids, ref)
	}
	b.objects[pagesRef] = raw.Dict{
		"Type":  raw.Name("Pages"),
		"Count": raw.Int(len(kids)),
		"Kids":  kids,
	}

	catalog := raw.Dict{"Type": raw.Name("Catalog"), "Pages": pagesRef}
	if b.doc.Lang != "" {
		catalog["Lang"] = raw.Text(b.doc.Lang)
	}
	b.objects[catalogRef] = catalog
	return b.objects, catalogRef, info, nil
}

func (b *objectBuilder) info() *raw.ObjectRef {
	d := raw.Dict{}
	if info := b.doc.Info; info != nil {
		for _, kv := range [][2]string{
			{"Title", info.Title},
			{"Author", info.Author},
			{"Subject", info.Subject},
			{"Creator", info.Creator},
			{"Producer", info.Producer},
			{"Keywords", strings.Join(info.Keywords, ",")},
		} {
			if kv[1] != "" {
				d[raw.Name(kv[0])] = raw.Text(kv[1])
			}
		}
	}
	if !b.cfg.Deterministic {
		d["CreationDate"] = raw.Text(pdfDate(time.Now()))
	}
	if len(d) == 0 {
		return nil
	}
	ref := b.add(d)
	return &ref
}

func (b *objectBuilder) page(p *semantic.Page, parent raw.ObjectRef) (raw.ObjectRef, error) {
	var content []byte
	for _, cs := range p.Contents {
		content = append(content, contentBytes(cs)...)
	}
	contentRef, err := b.stream(raw.Dict{}, content)
	if err != nil {
		return raw.ObjectRef{}, err
	}

	resources := raw.Dict{}
	if p.Resources != nil && len(p.Resources.Fonts) > 0 {
		names := make([]string, 0, len(p.Resources.Fonts))
		for name := range p.Resources.Fonts {
			names = append(names, name)
		}
		sort.Strings(names)
		fonts := raw.Dict{}
		for _, name := range names {
			ref, err := b.font(p.Resources.Fonts[name])
			if err != nil {
				return raw.ObjectRef{}, fmt.Errorf("font %s: %w", name, err)
			}
			fonts[raw.Name(name)] = ref
		}
		resources["Font"] = fonts
	}
	return b.add(raw.Dict{
		"Type":      raw.Name("Page"),
		"Parent":    parent,
		"MediaBox":  rectArray(p.MediaBox),
		"Resources": resources,
		"Contents":  contentRef,
	}), nil
}

// stream stores data as a stream object, flate-compressed when the config
// asks for it.
func (b *objectBuilder) stream(dict raw.Dict, data []byte) (raw.ObjectRef, error) {
	if b.cfg.Compression != 0 && len(data) > 0 {
		enc, err := flateEncode(data, b.cfg.Compression)
		if err != nil {
			return raw.ObjectRef{}, fmt.Errorf("flate: %w", err)
		}
		data = enc
		dict["Filter"] = raw.Name("FlateDecode")
	}
	return b.add(&raw.Stream{Dict: dict, Data: data}), nil
}

func (b *objectBuilder) fontDescriptor(fd *semantic.FontDescriptor) (*raw.ObjectRef, error) {
	if fd == nil {
		return nil, nil
	}
	name := fd.FontName
	if name == "" {
		name = "CustomFont"
	}
	flags := fd.Flags
	if flags == 0 {
		flags = 4
	}
	stem := fd.StemV
	if stem == 0 {
		stem = 80
	}
	d := raw.Dict{
		"Type":        raw.Name("FontDescriptor"),
		"FontName":    raw.Name(name),
		"Flags":       raw.Int(flags),
		"ItalicAngle": raw.Real(fd.ItalicAngle),
		"Ascent":      raw.Real(fd.Ascent),
		"Descent":     raw.Real(fd.Descent),
		"CapHeight":   raw.Real(fd.CapHeight),
		"StemV":       raw.Int(stem),
		"FontBBox":    raw.Array{raw.Real(fd.FontBBox[0]), raw.Real(fd.FontBBox[1]), raw.Real(fd.FontBBox[2]), raw.Real(fd.FontBBox[3])},
	}
	if len(fd.FontFile) > 0 {
		ref, err := b.stream(raw.Dict{"Length1": raw.Int(len(fd.FontFile))}, fd.FontFile)
		if err != nil {
			return nil, err
		}
		key := fd.FontFileType
		if key == "" {
			key = "FontFile2"
		}
		d[raw.Name(key)] = ref
	}
	ref := b.add(d)
	return &ref, nil
}

// font writes a Type0 font with its CIDFontType2 descendant once per font
// value.
func (b *objectBuilder) font(font *semantic.Font) (raw.ObjectRef, error) {
	if ref, ok := b.fonts[font]; ok {
		return ref, nil
	}
	if font == nil || font.Subtype != "Type0" {
		return raw.ObjectRef{}, fmt.Errorf("unsupported font subtype")
	}
	base := font.BaseFont
	if base == "" {
		base = "CustomFont"
	}
	encoding := font.Encoding
	if encoding == "" {
		encoding = "Identity-H"
	}
	desc := font.DescendantFont
	if desc == nil {
		desc = &semantic.CIDFont{}
	}
	subtype := desc.Subtype
	if subtype == "" {
		subtype = "CIDFontType2"
	}

	csi := desc.CIDSystemInfo
	if font.CIDSystemInfo != nil {
		csi = *font.CIDSystemInfo
	}
	if csi.Registry == "" {
		csi.Registry = "Adobe"
	}
	if csi.Ordering == "" {
		csi.Ordering = "Identity"
	}
	dw := desc.DW
	if dw <= 0 {
		dw = 1000
	}
	cid := raw.Dict{
		"Type":     raw.Name("Font"),
		"Subtype":  raw.Name(subtype),
		"BaseFont": raw.Name(base),
		"CIDSystemInfo": raw.Dict{
			"Registry":   raw.String{Bytes: []byte(csi.Registry)},
			"Ordering":   raw.String{Bytes: []byte(csi.Ordering)},
			"Supplement": raw.Int(csi.Supplement),
		},
		"DW": raw.Int(dw),
	}
	widths := desc.W
	if len(widths) == 0 {
		widths = font.Widths
	}
	if len(widths) > 0 {
		cid["W"] = cidWidths(widths)
	}
	if subtype == "CIDFontType2" {
		m := desc.CIDToGIDMapName
		if m == "" {
			m = "Identity"
		}
		cid["CIDToGIDMap"] = raw.Name(m)
	}
	fd := desc.Descriptor
	if fd == nil {
		fd = font.Descriptor
	}
	fdRef, err := b.fontDescriptor(fd)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if fdRef != nil {
		cid["FontDescriptor"] = *fdRef
	}

	d := raw.Dict{
		"Type":            raw.Name("Font"),
		"Subtype":         raw.Name("Type0"),
		"BaseFont":        raw.Name(base),
		"Encoding":        raw.Name(encoding),
		"DescendantFonts": raw.Array{b.add(cid)},
	}
	if cmap := toUnicodeCMap(font); len(cmap) > 0 {
		ref, err := b.stream(raw.Dict{}, cmap)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		d["ToUnicode"] = ref
	}
	ref := b.add(d)
	b.fonts[font] = ref
	return ref, nil
}

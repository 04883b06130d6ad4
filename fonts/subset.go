package fonts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
)

// Subset returns a copy of a TrueType font that keeps the outlines of the
// used glyphs and of every glyph their composites reference. Glyph indices
// are preserved so the result still works with an Identity CIDToGIDMap; the
// glyph count is cut after the highest kept index. Layout tables are dropped
// since text arrives already shaped. Fonts without glyf outlines are returned
// unchanged.
func Subset(data []byte, used map[int]bool) ([]byte, error) {
	f, err := parseSFNT(data)
	if err != nil {
		return nil, err
	}
	for _, tag := range []string{"head", "hhea", "maxp", "hmtx", "loca", "glyf"} {
		if _, ok := f.tables[tag]; !ok {
			return data, nil
		}
	}
	head, _ := f.table("head")
	maxp, _ := f.table("maxp")
	hhea, _ := f.table("hhea")
	if len(head) < 54 || len(maxp) < 6 || len(hhea) < 36 {
		return nil, fmt.Errorf("subset: truncated head, maxp or hhea")
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:6]))
	loca, err := newLocaReader(f, head, numGlyphs)
	if err != nil {
		return nil, err
	}

	keep := map[int]bool{0: true}
	for gid := range used {
		if gid >= 0 && gid < numGlyphs {
			keep[gid] = true
		}
	}
	loca.closure(keep)
	count := 0
	for gid := range keep {
		count = max(count, gid+1)
	}

	glyf, locaOut := loca.rebuild(keep, count)
	hmtx, err := rebuildHmtx(f, hhea, count)
	if err != nil {
		return nil, err
	}

	w := &sfntWriter{}
	w.add("glyf", glyf)
	w.add("loca", locaOut)
	w.add("hmtx", hmtx)
	w.add("maxp", patch16(maxp, 4, uint16(count)))
	w.add("hhea", patch16(hhea, 34, uint16(count)))
	// Long loca offsets; checksumAdjustment is filled in by the writer.
	h := patch16(head, 50, 1)
	binary.BigEndian.PutUint32(h[8:], 0)
	w.add("head", h)
	if post, ok := f.table("post"); ok && len(post) >= 32 {
		// Version 3 drops per-glyph names, which no longer match the count.
		p := bytes.Clone(post[:32])
		binary.BigEndian.PutUint32(p, 0x00030000)
		w.add("post", p)
	}
	for _, tag := range []string{"cmap", "name", "OS/2", "cvt ", "fpgm", "prep", "gasp"} {
		if t, ok := f.table(tag); ok {
			w.add(tag, t)
		}
	}
	return w.bytes(), nil
}

// SubsetTag returns the six uppercase letters that prefix the name of a
// subset font. The same glyph set always yields the same tag.
func SubsetTag(used map[int]bool) string {
	ids := make([]int, 0, len(used))
	for gid := range used {
		ids = append(ids, gid)
	}
	sort.Ints(ids)
	h := fnv.New64a()
	var b [4]byte
	for _, gid := range ids {
		binary.BigEndian.PutUint32(b[:], uint32(gid))
		h.Write(b[:])
	}
	sum := h.Sum64()
	tag := make([]byte, 6)
	for i := range tag {
		tag[i] = 'A' + byte(sum%26)
		sum /= 26
	}
	return string(tag)
}

type sfntFile struct {
	data   []byte
	tables map[string][2]uint32
}

func parseSFNT(data []byte) (*sfntFile, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("subset: invalid font header")
	}
	n := int(binary.BigEndian.Uint16(data[4:6]))
	f := &sfntFile{data: data, tables: make(map[string][2]uint32, n)}
	for i := 0; i < n; i++ {
		off := 12 + 16*i
		if off+16 > len(data) {
			return nil, fmt.Errorf("subset: table directory truncated")
		}
		tag := string(data[off : off+4])
		start := binary.BigEndian.Uint32(data[off+8:])
		length := binary.BigEndian.Uint32(data[off+12:])
		if uint64(start)+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("subset: table %q out of bounds", tag)
		}
		f.tables[tag] = [2]uint32{start, length}
	}
	return f, nil
}

func (f *sfntFile) table(tag string) ([]byte, bool) {
	t, ok := f.tables[tag]
	if !ok {
		return nil, false
	}
	return f.data[t[0] : t[0]+t[1]], true
}

type locaReader struct {
	loca, glyf []byte
	long       bool
	numGlyphs  int
}

func newLocaReader(f *sfntFile, head []byte, numGlyphs int) (*locaReader, error) {
	loca, _ := f.table("loca")
	glyf, _ := f.table("glyf")
	r := &locaReader{loca: loca, glyf: glyf, long: binary.BigEndian.Uint16(head[50:52]) == 1, numGlyphs: numGlyphs}
	size := 2
	if r.long {
		size = 4
	}
	if len(loca) < (numGlyphs+1)*size {
		return nil, fmt.Errorf("subset: loca has %d bytes for %d glyphs", len(loca), numGlyphs)
	}
	return r, nil
}

// glyph returns the outline bytes of gid, or nil for an empty glyph.
func (r *locaReader) glyph(gid int) []byte {
	var start, end uint32
	if r.long {
		start = binary.BigEndian.Uint32(r.loca[gid*4:])
		end = binary.BigEndian.Uint32(r.loca[gid*4+4:])
	} else {
		start = uint32(binary.BigEndian.Uint16(r.loca[gid*2:])) * 2
		end = uint32(binary.BigEndian.Uint16(r.loca[gid*2+2:])) * 2
	}
	if start >= end || end > uint32(len(r.glyf)) {
		return nil
	}
	return r.glyf[start:end]
}

// Composite glyph flags.
const (
	argsAreWords    = 0x0001
	haveScale       = 0x0008
	moreComponents  = 0x0020
	haveXYScale     = 0x0040
	haveTwoByTwo    = 0x0080
	glyphHeaderSize = 10
)

// closure adds to keep every component of the composite glyphs it holds.
func (r *locaReader) closure(keep map[int]bool) {
	queue := make([]int, 0, len(keep))
	for gid := range keep {
		queue = append(queue, gid)
	}
	for len(queue) > 0 {
		g := r.glyph(queue[0])
		queue = queue[1:]
		if len(g) < glyphHeaderSize || int16(binary.BigEndian.Uint16(g)) >= 0 {
			continue
		}
		for off := glyphHeaderSize; off+4 <= len(g); {
			flags := binary.BigEndian.Uint16(g[off:])
			sub := int(binary.BigEndian.Uint16(g[off+2:]))
			if sub < r.numGlyphs && !keep[sub] {
				keep[sub] = true
				queue = append(queue, sub)
			}
			off += 4
			if flags&argsAreWords != 0 {
				off += 4
			} else {
				off += 2
			}
			switch {
			case flags&haveScale != 0:
				off += 2
			case flags&haveXYScale != 0:
				off += 4
			case flags&haveTwoByTwo != 0:
				off += 8
			}
			if flags&moreComponents == 0 {
				break
			}
		}
	}
}

// rebuild writes glyf with only the kept outlines and a long-format loca.
func (r *locaReader) rebuild(keep map[int]bool, count int) (glyf, loca []byte) {
	var g bytes.Buffer
	l := make([]byte, 4*(count+1))
	for gid := 0; gid < count; gid++ {
		binary.BigEndian.PutUint32(l[gid*4:], uint32(g.Len()))
		if keep[gid] {
			g.Write(r.glyph(gid))
			// Outlines stay 4-byte aligned.
			for g.Len()%4 != 0 {
				g.WriteByte(0)
			}
		}
	}
	binary.BigEndian.PutUint32(l[count*4:], uint32(g.Len()))
	return g.Bytes(), l
}

// rebuildHmtx writes one full metric per glyph for the first count glyphs.
func rebuildHmtx(f *sfntFile, hhea []byte, count int) ([]byte, error) {
	hmtx, _ := f.table("hmtx")
	n := int(binary.BigEndian.Uint16(hhea[34:36]))
	if n == 0 || len(hmtx) < 4*n {
		return nil, fmt.Errorf("subset: hmtx has %d bytes for %d metrics", len(hmtx), n)
	}
	out := make([]byte, 4*count)
	for gid := 0; gid < count; gid++ {
		var adv, lsb uint16
		if gid < n {
			adv = binary.BigEndian.Uint16(hmtx[gid*4:])
			lsb = binary.BigEndian.Uint16(hmtx[gid*4+2:])
		} else {
			adv = binary.BigEndian.Uint16(hmtx[(n-1)*4:])
			if off := 4*n + 2*(gid-n); off+2 <= len(hmtx) {
				lsb = binary.BigEndian.Uint16(hmtx[off:])
			}
		}
		binary.BigEndian.PutUint16(out[gid*4:], adv)
		binary.BigEndian.PutUint16(out[gid*4+2:], lsb)
	}
	return out, nil
}

func patch16(b []byte, off int, v uint16) []byte {
	c := bytes.Clone(b)
	binary.BigEndian.PutUint16(c[off:], v)
	return c
}

type sfntWriter struct {
	tables []sfntTable
}

type sfntTable struct {
	tag  string
	data []byte
}

func (w *sfntWriter) add(tag string, data []byte) {
	w.tables = append(w.tables, sfntTable{tag, data})
}

func (w *sfntWriter) bytes() []byte {
	sort.Slice(w.tables, func(i, j int) bool { return w.tables[i].tag < w.tables[j].tag })
	n := len(w.tables)
	sel := 0
	for 1<<(sel+1) <= n {
		sel++
	}
	searchRange := (1 << sel) * 16

	var buf bytes.Buffer
	hdr := make([]byte, 12)
	binary.BigEndian.PutUint32(hdr, 0x00010000)
	binary.BigEndian.PutUint16(hdr[4:], uint16(n))
	binary.BigEndian.PutUint16(hdr[6:], uint16(searchRange))
	binary.BigEndian.PutUint16(hdr[8:], uint16(sel))
	binary.BigEndian.PutUint16(hdr[10:], uint16(n*16-searchRange))
	buf.Write(hdr)

	offset := 12 + 16*n
	headAt := -1
	for _, t := range w.tables {
		entry := make([]byte, 16)
		copy(entry, t.tag)
		binary.BigEndian.PutUint32(entry[4:], checksum(t.data))
		binary.BigEndian.PutUint32(entry[8:], uint32(offset))
		binary.BigEndian.PutUint32(entry[12:], uint32(len(t.data)))
		buf.Write(entry)
		if t.tag == "head" {
			headAt = offset
		}
		offset += pad4(len(t.data))
	}
	for _, t := range w.tables {
		buf.Write(t.data)
		buf.Write(make([]byte, pad4(len(t.data))-len(t.data)))
	}
	out := buf.Bytes()
	if headAt >= 0 {
		binary.BigEndian.PutUint32(out[headAt+8:], 0xB1B0AFBA-checksum(out))
	}
	return out
}

func pad4(n int) int { return (n + 3) &^ 3 }

func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

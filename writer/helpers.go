package writer

import (
	"bytes"
	"compress/flate"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/wudi/reportcard/ir/raw"
	"github.com/wudi/reportcard/ir/semantic"
)

func pdfVersion(cfg Config) string {
	if cfg.Version == "" {
		return string(PDF17)
	}
	return string(cfg.Version)
}

// fileID returns the two trailer IDs. Deterministic documents use a digest of
// their content for both.
func fileID(doc *semantic.Document, cfg Config) [2][]byte {
	seed := contentDigest(doc, cfg)
	if cfg.Deterministic {
		return [2][]byte{seed, seed}
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		id = seed
	}
	return [2][]byte{id, bytes.Clone(id)}
}

func contentDigest(doc *semantic.Document, cfg Config) []byte {
	h := sha256.New()
	h.Write([]byte(pdfVersion(cfg)))
	if info := doc.Info; info != nil {
		for _, s := range []string{info.Title, info.Author, info.Subject, info.Creator, info.Producer, strings.Join(info.Keywords, ",")} {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	}
	fmt.Fprintf(h, "%d", len(doc.Pages))
	for _, p := range doc.Pages {
		h.Write(rectArray(p.MediaBox).AppendPDF(nil))
		for _, cs := range p.Contents {
			h.Write(contentBytes(cs))
		}
	}
	return h.Sum(nil)[:16]
}

func rectArray(r semantic.Rectangle) raw.Array {
	return raw.Array{raw.Real(r.LLX), raw.Real(r.LLY), raw.Real(r.URX), raw.Real(r.URY)}
}

func flateEncode(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// toUnicodeCMap maps each two-byte glyph code to the text it was drawn for.
func toUnicodeCMap(font *semantic.Font) []byte {
	if font == nil || len(font.ToUnicode) == 0 {
		return nil
	}
	codes := make([]int, 0, len(font.ToUnicode))
	for cid := range font.ToUnicode {
		codes = append(codes, cid)
	}
	sort.Ints(codes)
	csi := semantic.CIDSystemInfo{Registry: "Adobe", Ordering: "UCS"}
	name := strings.ReplaceAll(font.BaseFont, " ", "")
	if name == "" {
		name = "ToUnicode"
	}

	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	fmt.Fprintf(&buf, "/CIDSystemInfo << /Registry (%s) /Ordering (%s) /Supplement %d >> def\n", csi.Registry, csi.Ordering, csi.Supplement)
	buf.Write(raw.AppendName([]byte("/CMapName "), name+"-UTF16"))
	buf.WriteString(" def\n/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	// bfchar blocks hold at most 100 entries.
	for len(codes) > 0 {
		n := min(len(codes), 100)
		fmt.Fprintf(&buf, "%d beginbfchar\n", n)
		for _, cid := range codes[:n] {
			fmt.Fprintf(&buf, "<%04X> <%s>\n", cid, utf16Hex(font.ToUnicode[cid]))
		}
		buf.WriteString("endbfchar\n")
		codes = codes[n:]
	}
	buf.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return buf.Bytes()
}

func utf16Hex(runes []rune) string {
	var b strings.Builder
	for _, u := range utf16.Encode(runes) {
		fmt.Fprintf(&b, "%04X", u)
	}
	return b.String()
}

// cidWidths encodes W as "first last width" ranges of consecutive codes
// sharing one width.
func cidWidths(widths map[int]int) raw.Array {
	codes := make([]int, 0, len(widths))
	for c := range widths {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	var arr raw.Array
	for i := 0; i < len(codes); {
		j := i
		for j+1 < len(codes) && codes[j+1] == codes[j]+1 && widths[codes[j+1]] == widths[codes[i]] {
			j++
		}
		arr = append(arr, raw.Int(codes[i]), raw.Int(codes[j]), raw.Int(widths[codes[i]]))
		i = j + 1
	}
	return arr
}

// contentBytes writes one operation per line, operands first.
func contentBytes(cs semantic.ContentStream) []byte {
	var out []byte
	for _, op := range cs.Operations {
		for _, operand := range op.Operands {
			out = operandObject(operand).AppendPDF(out)
			out = append(out, ' ')
		}
		out = append(out, op.Operator...)
		out = append(out, '\n')
	}
	return out
}

func operandObject(op semantic.Operand) raw.Object {
	switch v := op.(type) {
	case semantic.NumberOperand:
		return raw.Real(v.Value)
	case semantic.NameOperand:
		return raw.Name(v.Value)
	case semantic.StringOperand:
		return raw.String{Bytes: v.Value, Hex: v.Hex}
	case semantic.ArrayOperand:
		arr := make(raw.Array, len(v.Values))
		for i, it := range v.Values {
			arr[i] = operandObject(it)
		}
		return arr
	case semantic.DictOperand:
		d := make(raw.Dict, len(v.Values))
		for k, it := range v.Values {
			d[raw.Name(k)] = operandObject(it)
		}
		return d
	}
	return raw.Null{}
}

func pdfDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}

func trailer(size int, catalog raw.ObjectRef, info *raw.ObjectRef, ids [2][]byte) raw.Dict {
	d := raw.Dict{
		"Size": raw.Int(size),
		"Root": catalog,
		"ID":   raw.Array{raw.String{Bytes: ids[0], Hex: true}, raw.String{Bytes: ids[1], Hex: true}},
	}
	if info != nil {
		d["Info"] = *info
	}
	return d
}

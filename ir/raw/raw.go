// Package raw is the PDF object model the writer emits. Every object appends
// its own PDF syntax, so serialization is a single AppendPDF call.
package raw

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Object is any direct PDF object.
type Object interface {
	AppendPDF(dst []byte) []byte
}

// ObjectRef identifies an indirect object. As an Object it is a reference.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

func (r ObjectRef) AppendPDF(dst []byte) []byte {
	return fmt.Appendf(dst, "%d %d R", r.Num, r.Gen)
}

// Name is a PDF name; irregular characters are written as #xx escapes.
type Name string

func (n Name) AppendPDF(dst []byte) []byte { return AppendName(dst, string(n)) }

type Int int64

func (i Int) AppendPDF(dst []byte) []byte { return strconv.AppendInt(dst, int64(i), 10) }

// Real is written with at most four decimals.
type Real float64

func (r Real) AppendPDF(dst []byte) []byte { return AppendNumber(dst, float64(r)) }

type Bool bool

func (b Bool) AppendPDF(dst []byte) []byte { return strconv.AppendBool(dst, bool(b)) }

type Null struct{}

func (Null) AppendPDF(dst []byte) []byte { return append(dst, "null"...) }

// String is a literal string, or a hex string when Hex is set.
type String struct {
	Bytes []byte
	Hex   bool
}

func (s String) AppendPDF(dst []byte) []byte {
	if s.Hex {
		return AppendHex(dst, s.Bytes)
	}
	return AppendLiteral(dst, s.Bytes)
}

// Text encodes s as a PDF text string: a literal when ASCII, otherwise
// UTF-16BE with a byte order mark in hex.
func Text(s string) String {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return String{Bytes: []byte(s)}
	}
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2+2*len(units))
	out = append(out, 0xFE, 0xFF)
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return String{Bytes: out, Hex: true}
}

type Array []Object

func (a Array) AppendPDF(dst []byte) []byte {
	dst = append(dst, '[')
	for i, o := range a {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = o.AppendPDF(dst)
	}
	return append(dst, ']')
}

// Dict writes its entries sorted by key.
type Dict map[Name]Object

func (d Dict) AppendPDF(dst []byte) []byte {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	dst = append(dst, "<<"...)
	for _, k := range keys {
		dst = AppendName(dst, k)
		dst = append(dst, ' ')
		dst = d[Name(k)].AppendPDF(dst)
	}
	return append(dst, ">>"...)
}

// Stream is a dictionary followed by its (already encoded) data. Length is
// set from Data when written.
type Stream struct {
	Dict Dict
	Data []byte
}

func (s *Stream) AppendPDF(dst []byte) []byte {
	d := make(Dict, len(s.Dict)+1)
	for k, v := range s.Dict {
		d[k] = v
	}
	d["Length"] = Int(len(s.Data))
	dst = d.AppendPDF(dst)
	dst = append(dst, "\nstream\n"...)
	dst = append(dst, s.Data...)
	return append(dst, "\nendstream"...)
}

// AppendNumber writes v with at most four decimals and never in exponent
// notation, which PDF does not allow.
func AppendNumber(dst []byte, v float64) []byte {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		s = "0"
	}
	return append(dst, s...)
}

// AppendName writes /name, escaping delimiters, '#', and bytes outside the
// printable ASCII range.
func AppendName(dst []byte, name string) []byte {
	dst = append(dst, '/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c >= 0x7F || strings.IndexByte("#()<>[]{}/%", c) >= 0 {
			dst = fmt.Appendf(dst, "#%02X", c)
			continue
		}
		dst = append(dst, c)
	}
	return dst
}

// AppendHex writes b as an uppercase hex string.
func AppendHex(dst []byte, b []byte) []byte {
	dst = append(dst, '<')
	for _, c := range b {
		dst = fmt.Appendf(dst, "%02X", c)
	}
	return append(dst, '>')
}

// AppendLiteral writes b as a literal string with backslash escapes.
func AppendLiteral(dst []byte, b []byte) []byte {
	dst = append(dst, '(')
	for _, c := range b {
		switch c {
		case '\\', '(', ')':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, `\n`...)
		case '\r':
			dst = append(dst, `\r`...)
		case '\t':
			dst = append(dst, `\t`...)
		case '\b':
			dst = append(dst, `\b`...)
		case '\f':
			dst = append(dst, `\f`...)
		default:
			if c < 0x20 || c >= 0x80 {
				dst = fmt.Appendf(dst, "\\%03o", c)
			} else {
				dst = append(dst, c)
			}
		}
	}
	return append(dst, ')')
}

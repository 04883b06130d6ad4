package canvas

import (
	"strings"
	"unicode"
)

// RawRun builds an unshaped run: words split on white space, left to right,
// glyphs resolved through the font's nominal mapping at draw time.
func RawRun(text string, font FontID) Run {
	run := Run{Text: text, Font: font}
	for _, f := range strings.FieldsFunc(text, unicode.IsSpace) {
		run.Words = append(run.Words, Word{Text: f})
	}
	return run
}

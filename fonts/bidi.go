package fonts

import "golang.org/x/text/unicode/bidi"

// strong reports the bidi direction of the first strong character in s.
func strong(s string) (rtl, ok bool) {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.R, bidi.AL:
			return true, true
		case bidi.L:
			return false, true
		}
	}
	return false, false
}

func numeric(s string) bool {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.EN, bidi.AN:
			return true
		}
	}
	return false
}

// ParagraphRTL reports whether the first strong character of text is
// right-to-left.
func ParagraphRTL(text string) bool {
	rtl, _ := strong(text)
	return rtl
}

// wordLevels assigns an embedding level to every word. Right-to-left words
// sit at level 1; left-to-right words and numbers at the base level, raised
// to 2 inside a right-to-left paragraph. Neutral words take the level of
// their neighbours when both agree, the base level otherwise.
func wordLevels(words []string, baseRTL bool) []uint8 {
	var base, ltr uint8 = 0, 0
	if baseRTL {
		base, ltr = 1, 2
	}
	levels := make([]uint8, len(words))
	known := make([]bool, len(words))
	for i, w := range words {
		if rtl, ok := strong(w); ok {
			levels[i], known[i] = ltr, true
			if rtl {
				levels[i] = 1
			}
			continue
		}
		if numeric(w) {
			levels[i], known[i] = ltr, true
		}
	}
	for i := range words {
		if known[i] {
			continue
		}
		levels[i] = base
		prev, next := -1, -1
		for j := i - 1; j >= 0; j-- {
			if known[j] {
				prev = j
				break
			}
		}
		for j := i + 1; j < len(words); j++ {
			if known[j] {
				next = j
				break
			}
		}
		if prev >= 0 && next >= 0 && levels[prev] == levels[next] {
			levels[i] = levels[prev]
		}
	}
	return levels
}

package canvas

import (
	"slices"
	"strings"
)

// metrics of one style, resolved once per measure or draw call.
type lineMetrics struct {
	scale  float64 // mm per 1/1000 em
	space  []Glyph
	spaceW float64
}

func (r *Recorder) lineMetrics(font FontID, st Style) lineMetrics {
	lm := lineMetrics{scale: st.Size * PtToMM / 1000}
	space, err := r.metrics.Glyphs(Word{Text: " "}, font)
	if err != nil {
		r.setErr(err)
		return lm
	}
	lm.space = space
	lm.spaceW = advance(space) * lm.scale
	return lm
}

func advance(gs []Glyph) float64 {
	var a float64
	for _, g := range gs {
		a += g.Advance
	}
	return a
}

// resolve fills in nominal glyphs for words that were not shaped.
func (r *Recorder) resolve(run Run) []Word {
	words := make([]Word, 0, len(run.Words))
	for _, w := range run.Words {
		if len(w.Glyphs) == 0 && w.Text != "" {
			gs, err := r.metrics.Glyphs(w, run.Font)
			if err != nil {
				r.setErr(err)
				continue
			}
			w.Glyphs = gs
		}
		words = append(words, w)
	}
	return words
}

// wrap breaks words greedily into lines no wider than avail. Words wider
// than a whole line are split between glyphs in logical order.
func wrap(words []Word, lm lineMetrics, avail float64) [][]Word {
	var (
		lines [][]Word
		cur   []Word
		curW  float64
	)
	flush := func() {
		lines = append(lines, cur)
		cur, curW = nil, 0
	}
	for _, w := range words {
		ww := advance(w.Glyphs) * lm.scale
		if ww > avail {
			if len(cur) > 0 {
				flush()
			}
			chunks := splitWord(w, lm.scale, avail)
			for _, c := range chunks[:len(chunks)-1] {
				cur = []Word{c}
				flush()
			}
			last := chunks[len(chunks)-1]
			cur, curW = []Word{last}, advance(last.Glyphs)*lm.scale
			continue
		}
		next := curW + ww
		if len(cur) > 0 {
			next += lm.spaceW
		}
		if len(cur) > 0 && next > avail {
			flush()
			next = ww
		}
		cur = append(cur, w)
		curW = next
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

func splitWord(w Word, scale, avail float64) []Word {
	logical := slices.Clone(w.Glyphs)
	if w.RTL() {
		slices.Reverse(logical)
	}
	var (
		out   []Word
		chunk []Glyph
		width float64
	)
	emit := func() {
		gs := slices.Clone(chunk)
		var text strings.Builder
		for _, g := range gs {
			text.WriteString(string(g.Runes))
		}
		if w.RTL() {
			slices.Reverse(gs)
		}
		out = append(out, Word{Text: text.String(), Glyphs: gs, Level: w.Level})
		chunk, width = nil, 0
	}
	for _, g := range logical {
		gw := g.Advance * scale
		if len(chunk) > 0 && width+gw > avail {
			emit()
		}
		chunk = append(chunk, g)
		width += gw
	}
	if len(chunk) > 0 || len(out) == 0 {
		emit()
	}
	return out
}

// visualOrder reorders the words of one line for display: from the highest
// embedding level down to the lowest odd one, every maximal sequence at or
// above the level is reversed.
func visualOrder(words []Word) []Word {
	out := slices.Clone(words)
	var maxLevel, minOdd uint8 = 0, 255
	for _, w := range out {
		maxLevel = max(maxLevel, w.Level)
		if w.Level%2 == 1 {
			minOdd = min(minOdd, w.Level)
		}
	}
	if minOdd == 255 {
		return out
	}
	for lvl := maxLevel; lvl >= minOdd; lvl-- {
		for i := 0; i < len(out); {
			if out[i].Level < lvl {
				i++
				continue
			}
			j := i
			for j < len(out) && out[j].Level >= lvl {
				j++
			}
			slices.Reverse(out[i:j])
			i = j
		}
	}
	return out
}

func lineWidth(words []Word, lm lineMetrics) float64 {
	var w float64
	for i, word := range words {
		if i > 0 {
			w += lm.spaceW
		}
		w += advance(word.Glyphs) * lm.scale
	}
	return w
}

func lineText(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

package canvas

// fixedMetrics maps every rune to a glyph with the rune's code point as ID.
// Letters advance 500 units, spaces 250.
type fixedMetrics struct{}

func (fixedMetrics) Glyphs(w Word, font FontID) ([]Glyph, error) {
	if font > FontBold {
		return nil, ErrUnknownFont
	}
	if len(w.Glyphs) > 0 {
		return w.Glyphs, nil
	}
	var gs []Glyph
	for _, r := range w.Text {
		adv := 500.0
		if r == ' ' {
			adv = 250
		}
		gs = append(gs, Glyph{ID: int(r), Advance: adv, Runes: []rune{r}})
	}
	return gs, nil
}

func (fixedMetrics) Ascent(FontID) float64  { return 800 }
func (fixedMetrics) Descent(FontID) float64 { return 200 }

// 10 pt: one letter is 500 * 10 * PtToMM / 1000 mm wide.
var (
	testStyle  = Style{Size: 10, LineHeight: 4, Padding: 1}
	letterMM   = 500 * 10 * PtToMM / 1000
	spaceMM    = 250 * 10 * PtToMM / 1000
	testLetter = func(n int) float64 { return float64(n) * letterMM }
)

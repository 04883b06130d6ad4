package fonts

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/reportcard/canvas"
)

// Direction is the paragraph base direction used when shaping.
type Direction int

const (
	// DirectionAuto takes the direction of the first strong character.
	DirectionAuto Direction = iota
	DirectionLTR
	DirectionRTL
)

// ParseDirection accepts "rtl", "ltr" and "auto".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rtl":
		return DirectionRTL, nil
	case "ltr":
		return DirectionLTR, nil
	case "", "auto":
		return DirectionAuto, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Shaper shapes text word by word with HarfBuzz. It caches parsed faces and
// is not safe for concurrent use; create one per document.
type Shaper struct {
	set   *Set
	base  Direction
	hb    shaping.HarfbuzzShaper
	faces map[canvas.FontID]*gofont.Face
}

// NewShaper returns a shaper over the faces of set.
func NewShaper(set *Set, base Direction) *Shaper {
	return &Shaper{set: set, base: base, faces: make(map[canvas.FontID]*gofont.Face)}
}

func (s *Shaper) face(id canvas.FontID) (*gofont.Face, error) {
	if f, ok := s.faces[id]; ok {
		return f, nil
	}
	src, err := s.set.Face(id)
	if err != nil {
		return nil, err
	}
	f, err := gofont.ParseTTF(bytes.NewReader(src.Data()))
	if err != nil {
		return nil, err
	}
	s.faces[id] = f
	return f, nil
}

// Shape splits text on white space and shapes every word in its own script
// and direction. Errors wrap ErrShaping.
func (s *Shaper) Shape(text string, id canvas.FontID) (run canvas.Run, err error) {
	defer func() {
		if r := recover(); r != nil {
			run, err = canvas.Run{}, fmt.Errorf("%w: %v", ErrShaping, r)
		}
	}()
	face, err := s.face(id)
	if err != nil {
		return canvas.Run{}, fmt.Errorf("%w: %v", ErrShaping, err)
	}

	rtl := s.base == DirectionRTL
	if s.base == DirectionAuto {
		rtl = ParagraphRTL(text)
	}
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	levels := wordLevels(fields, rtl)

	run = canvas.Run{Text: text, Font: id, RTL: rtl}
	for i, w := range fields {
		glyphs, err := s.shapeWord([]rune(w), levels[i], face)
		if err != nil {
			return canvas.Run{}, err
		}
		run.Words = append(run.Words, canvas.Word{Text: w, Glyphs: glyphs, Level: levels[i]})
	}
	return run, nil
}

func (s *Shaper) shapeWord(runes []rune, level uint8, face *gofont.Face) ([]canvas.Glyph, error) {
	script := DetectScript(runes)
	dir := di.DirectionLTR
	if level%2 == 1 {
		dir = di.DirectionRTL
	}
	// Size 1000 in 26.6 makes advances come out in 1/1000 em.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	out := s.hb.Shape(input)
	if len(out.Glyphs) == 0 {
		return nil, fmt.Errorf("%w: no glyphs for %q", ErrShaping, string(runes))
	}

	glyphs := make([]canvas.Glyph, len(out.Glyphs))
	owner := clusterOwners(out.Glyphs, runes)
	for i, g := range out.Glyphs {
		glyphs[i] = canvas.Glyph{ID: int(g.GlyphID), Advance: float64(g.XAdvance) / 64, Runes: owner[i]}
	}
	return glyphs, nil
}

// clusterOwners gives the runes of each cluster to the first glyph shaped
// from it, so ligatures map back to all their characters and the remaining
// glyphs of a cluster carry none.
func clusterOwners(glyphs []shaping.Glyph, runes []rune) [][]rune {
	starts := make([]int, 0, len(glyphs))
	for _, g := range glyphs {
		starts = append(starts, g.ClusterIndex)
	}
	slices.Sort(starts)
	starts = slices.Compact(starts)

	owner := make([][]rune, len(glyphs))
	claimed := make(map[int]bool, len(starts))
	for i, g := range glyphs {
		c := g.ClusterIndex
		if claimed[c] {
			continue
		}
		claimed[c] = true
		end := len(runes)
		if j, _ := slices.BinarySearch(starts, c); j+1 < len(starts) {
			end = starts[j+1]
		}
		if c < end {
			owner[i] = slices.Clone(runes[c:end])
		}
	}
	return owner
}

// DetectScript returns the most frequent script of runes, Latin when none
// is recognised. Common and inherited characters such as digits, punctuation
// and marks do not count; ties keep the script that reached the count first.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	best, top := language.Latin, 0
	for _, r := range runes {
		sc := language.LookupScript(r)
		if sc == language.Common || sc == language.Inherited || sc == language.Unknown {
			continue
		}
		if counts[sc]++; counts[sc] > top {
			best, top = sc, counts[sc]
		}
	}
	return best
}

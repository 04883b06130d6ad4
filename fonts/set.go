package fonts

import (
	"fmt"

	"github.com/wudi/reportcard/canvas"
)

// Set holds the regular and bold faces of one document and implements
// canvas.Metrics.
type Set struct {
	faces map[canvas.FontID]*Face
}

// NewSet parses both font programs. Build one Set per document.
func NewSet(regular, bold []byte) (*Set, error) {
	reg, err := NewFace("Regular", regular)
	if err != nil {
		return nil, err
	}
	b, err := NewFace("Bold", bold)
	if err != nil {
		return nil, err
	}
	return &Set{faces: map[canvas.FontID]*Face{canvas.FontRegular: reg, canvas.FontBold: b}}, nil
}

// Face returns the face registered for id.
func (s *Set) Face(id canvas.FontID) (*Face, error) {
	f, ok := s.faces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", canvas.ErrUnknownFont, id)
	}
	return f, nil
}

// IDs lists the registered font IDs in ascending order.
func (s *Set) IDs() []canvas.FontID {
	return []canvas.FontID{canvas.FontRegular, canvas.FontBold}
}

func (s *Set) Glyphs(w canvas.Word, id canvas.FontID) ([]canvas.Glyph, error) {
	f, err := s.Face(id)
	if err != nil {
		return nil, err
	}
	if len(w.Glyphs) > 0 {
		return w.Glyphs, nil
	}
	return f.Nominal(w.Text), nil
}

func (s *Set) Ascent(id canvas.FontID) float64 {
	if f, err := s.Face(id); err == nil {
		return f.Ascent()
	}
	return 0
}

func (s *Set) Descent(id canvas.FontID) float64 {
	if f, err := s.Face(id); err == nil {
		return f.Descent()
	}
	return 0
}

// Package contentstream builds the operator sequences of page content:
// vector paths, stroke state and the save/restore bracketing around them.
package contentstream

// Verb is one path construction step.
type Verb uint8

const (
	MoveTo Verb = iota
	LineTo
	CubeTo
	Close
)

// arity is the number of coordinates each verb consumes.
var arity = [...]int{MoveTo: 2, LineTo: 2, CubeTo: 6, Close: 0}

// Cap is the stroke end style written with J.
type Cap int

const (
	ButtCap Cap = iota
	RoundCap
	SquareCap
)

// Join is the stroke corner style written with j.
type Join int

const (
	MiterJoin Join = iota
	RoundJoin
	BevelJoin
)

// Path is a flat list of verbs and their coordinates.
type Path struct {
	verbs  []Verb
	coords []float64
}

func (p *Path) MoveTo(x, y float64) *Path { return p.add(MoveTo, x, y) }
func (p *Path) LineTo(x, y float64) *Path { return p.add(LineTo, x, y) }
func (p *Path) Close() *Path              { return p.add(Close) }

// CubeTo appends a cubic Bézier segment with control points (x1, y1) and
// (x2, y2) ending at (x, y).
func (p *Path) CubeTo(x1, y1, x2, y2, x, y float64) *Path {
	return p.add(CubeTo, x1, y1, x2, y2, x, y)
}

func (p *Path) add(v Verb, c ...float64) *Path {
	p.verbs = append(p.verbs, v)
	p.coords = append(p.coords, c...)
	return p
}

// Len reports the number of verbs.
func (p *Path) Len() int { return len(p.verbs) }

// Each calls fn for every verb with its coordinates in order.
func (p *Path) Each(fn func(v Verb, c []float64)) {
	off := 0
	for _, v := range p.verbs {
		n := arity[v]
		fn(v, p.coords[off:off+n])
		off += n
	}
}

// kappa places Bézier control points so four curves approximate a circle.
const kappa = 0.5522847498

// Circle returns a closed path of four cubic curves centred on (cx, cy).
func Circle(cx, cy, r float64) *Path {
	k := r * kappa
	return new(Path).
		MoveTo(cx+r, cy).
		CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r).
		CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy).
		CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r).
		CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy).
		Close()
}

// Line returns an open two-point path.
func Line(x1, y1, x2, y2 float64) *Path {
	return new(Path).MoveTo(x1, y1).LineTo(x2, y2)
}

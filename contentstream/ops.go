package contentstream

import "github.com/wudi/reportcard/ir/semantic"

var pathOperators = [...]string{MoveTo: "m", LineTo: "l", CubeTo: "c", Close: "h"}

// Ops accumulates the operations of one content stream.
type Ops []semantic.Operation

// Emit appends an operator with numeric operands.
func (o *Ops) Emit(op string, nums ...float64) {
	var operands []semantic.Operand
	if len(nums) > 0 {
		operands = make([]semantic.Operand, len(nums))
		for i, n := range nums {
			operands[i] = semantic.NumberOperand{Value: n}
		}
	}
	*o = append(*o, semantic.Operation{Operator: op, Operands: operands})
}

// EmitOperands appends an operator with arbitrary operands.
func (o *Ops) EmitOperands(op string, operands ...semantic.Operand) {
	*o = append(*o, semantic.Operation{Operator: op, Operands: operands})
}

// Path appends the construction operators of p without painting it.
func (o *Ops) Path(p *Path) {
	p.Each(func(v Verb, c []float64) { o.Emit(pathOperators[v], c...) })
}

// Stroke describes the line state applied before a path is stroked.
// Zero fields keep the graphics state defaults and emit nothing.
type Stroke struct {
	Width float64
	Cap   Cap
	Join  Join
	Dash  []float64
	Phase float64
}

// StrokeState appends w, J, j and d for the non-default fields of s.
func (o *Ops) StrokeState(s Stroke) {
	if s.Width > 0 {
		o.Emit("w", s.Width)
	}
	if s.Cap != ButtCap {
		o.Emit("J", float64(s.Cap))
	}
	if s.Join != MiterJoin {
		o.Emit("j", float64(s.Join))
	}
	if len(s.Dash) > 0 {
		dash := make([]semantic.Operand, len(s.Dash))
		for i, d := range s.Dash {
			dash[i] = semantic.NumberOperand{Value: d}
		}
		o.EmitOperands("d", semantic.ArrayOperand{Values: dash}, semantic.NumberOperand{Value: s.Phase})
	}
}

// Paint returns the painting operator for a fill and stroke combination.
// A path with neither is stroked.
func Paint(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "B"
	case fill:
		return "f"
	default:
		return "S"
	}
}

// Saved runs fn between q and Q.
func (o *Ops) Saved(fn func()) {
	o.Emit("q")
	fn()
	o.Emit("Q")
}

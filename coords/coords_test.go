package coords

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestPageFlipsAndScales(t *testing.T) {
	m := Page(297)
	cases := []struct {
		in   Point
		want Point
	}{
		{Point{0, 0}, Point{0, 297 * PointsPerMM}},
		{Point{0, 297}, Point{0, 0}},
		{Point{25.4, 25.4}, Point{72, (297 - 25.4) * PointsPerMM}},
	}
	for _, c := range cases {
		got := m.Transform(c.in)
		if !near(got.X, c.want.X) || !near(got.Y, c.want.Y) {
			t.Fatalf("Transform(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Page(210)
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("inverse: %v", err)
	}
	p := Point{12.5, 80}
	back := inv.Transform(m.Transform(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Fatalf("round trip %v -> %v", p, back)
	}
	if _, err := Scale(0, 1).Inverse(); err == nil {
		t.Fatalf("expected singular matrix error")
	}
}

func TestLength(t *testing.T) {
	if !near(Length(25.4), 72) {
		t.Fatalf("Length(25.4) = %v", Length(25.4))
	}
}

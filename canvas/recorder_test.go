package canvas

import (
	"errors"
	"math"
	"testing"
)

func newTestRecorder() *Recorder {
	r := NewRecorder(fixedMetrics{}, A4())
	r.NewPage()
	return r
}

func TestMeasureText(t *testing.T) {
	r := newTestRecorder()
	h, n := r.MeasureText(RawRun("", FontRegular), testStyle, 50)
	if n != 1 || h != testStyle.LineHeight+2*testStyle.Padding {
		t.Fatalf("empty run got %v/%d", h, n)
	}
	h, n = r.MeasureText(RawRun("aaaa bbbb", FontRegular), testStyle, testLetter(5)+2*testStyle.Padding)
	if n != 2 || h != 2*testStyle.LineHeight+2*testStyle.Padding {
		t.Fatalf("two lines got %v/%d", h, n)
	}
}

func TestDrawTextAlignment(t *testing.T) {
	r := newTestRecorder()
	box := Box{X: 20, Y: 30, W: 60, Align: AlignStart}
	run := RawRun("ab", FontRegular)
	run.RTL = true
	r.DrawText(box, run, testStyle)
	run.RTL = false
	r.DrawText(box, run, testStyle)

	cmds := r.pages[0].Commands
	if len(cmds) != 2 {
		t.Fatalf("commands got %d want 2", len(cmds))
	}
	wantRight := box.X + box.W - testStyle.Padding - testLetter(2)
	if math.Abs(cmds[0].X-wantRight) > 1e-9 {
		t.Fatalf("rtl x got %v want %v", cmds[0].X, wantRight)
	}
	if cmds[1].X != box.X+testStyle.Padding {
		t.Fatalf("ltr x got %v want %v", cmds[1].X, box.X+testStyle.Padding)
	}
	if got, want := r.CurrentY(), box.Y+testStyle.LineHeight+2*testStyle.Padding; got != want {
		t.Fatalf("CurrentY got %v want %v", got, want)
	}
}

func TestDrawTextMaxLines(t *testing.T) {
	r := newTestRecorder()
	r.DrawText(Box{X: 0, Y: 20, W: testLetter(2) + 2.5, H: 10, MaxLines: 1, Border: true}, RawRun("aa bb cc", FontRegular), testStyle)
	var text int
	for _, c := range r.pages[0].Commands {
		if c.Kind == KindText {
			text++
		}
	}
	if text != 1 {
		t.Fatalf("text lines got %d want 1", text)
	}
	if r.CurrentY() != 30 {
		t.Fatalf("CurrentY got %v want 30", r.CurrentY())
	}
}

func TestRecorderErrors(t *testing.T) {
	r := NewRecorder(fixedMetrics{}, A4())
	r.DrawLine(0, 0, 1, 1)
	if _, err := r.Finalize(); !errors.Is(err, ErrNoPage) {
		t.Fatalf("expected ErrNoPage, got %v", err)
	}

	r = newTestRecorder()
	r.Restore()
	if _, err := r.Finalize(); !errors.Is(err, ErrUnbalancedRestore) {
		t.Fatalf("expected ErrUnbalancedRestore, got %v", err)
	}

	r = newTestRecorder()
	r.Save()
	if _, err := r.Finalize(); !errors.Is(err, ErrUnbalancedRestore) {
		t.Fatalf("expected ErrUnbalancedRestore for open save, got %v", err)
	}

	r = newTestRecorder()
	r.DrawText(Box{W: 20}, Run{Words: []Word{{Text: "x"}}, Font: FontID(9)}, testStyle)
	if _, err := r.Finalize(); !errors.Is(err, ErrUnknownFont) {
		t.Fatalf("expected ErrUnknownFont, got %v", err)
	}
}

func TestSaveRestoreState(t *testing.T) {
	r := newTestRecorder()
	red := Color{R: 1}
	r.Save()
	r.SetStrokeColor(red)
	r.SetLineWidth(1)
	r.DrawLine(0, 20, 10, 20)
	r.Restore()
	r.DrawLine(0, 25, 10, 25)

	cmds := r.pages[0].Commands
	if cmds[0].State.Stroke != red || cmds[0].State.LineWidth != 1 {
		t.Fatalf("inner state not captured: %+v", cmds[0].State)
	}
	if cmds[1].State.Stroke != Black || cmds[1].State.LineWidth != 0.2 {
		t.Fatalf("state leaked: %+v", cmds[1].State)
	}
}

func TestPageHook(t *testing.T) {
	r := NewRecorder(fixedMetrics{}, A4())
	var seen []int
	r.OnNewPage(func(c Canvas, page int) {
		seen = append(seen, page)
		c.SetFillColor(Color{G: 1})
		c.DrawRect(0, 280, 210, 17, true)
	})
	r.NewPage()
	r.NewPage()
	if len(seen) != 2 || seen[1] != 1 {
		t.Fatalf("hook pages got %v", seen)
	}
	if r.CurrentY() != A4().Margins.Top {
		t.Fatalf("decoration moved CurrentY to %v", r.CurrentY())
	}
	r.DrawRect(10, 10, 5, 5, false)
	if r.pages[1].Commands[1].State.Fill != Black {
		t.Fatalf("hook state leaked into content")
	}
	layout, err := r.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(layout.Pages) != 2 {
		t.Fatalf("pages got %d want 2", len(layout.Pages))
	}
	if _, err := r.Finalize(); !errors.Is(err, ErrFinalized) {
		t.Fatalf("second Finalize got %v", err)
	}
}

package layout_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/layout"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/score"
)

func TestColumnWidthsSumToContentWidth(t *testing.T) {
	for cols := 1; cols <= 7; cols++ {
		rec := newRecorder()
		sizes := make([]int, 2*cols)
		for i := range sizes {
			sizes[i] = 1
		}
		res := layoutOn(t, rec, table(cols, sizes...), 20)
		for bi, b := range res.Batches {
			var sum float64
			for _, w := range b.Widths {
				sum += w
			}
			if sum != rec.PageContentWidth() {
				t.Fatalf("cols=%d batch %d: widths sum %v want %v", cols, bi, sum, rec.PageContentWidth())
			}
		}
		if diff := cmp.Diff(res.Batches[0].Widths, res.Batches[1].Widths); diff != "" {
			t.Fatalf("cols=%d: widths differ between batches:\n%s", cols, diff)
		}
	}
}

func TestShortBatchOmitsEmptySlots(t *testing.T) {
	spec := table(4, 2, 2, 2, 2, 2)
	res := layoutOn(t, newRecorder(), spec, 20)
	if len(res.Batches) != 2 {
		t.Fatalf("batches got %d want 2", len(res.Batches))
	}
	second := res.Batches[1]
	if len(second.Widths) != 1 || len(second.ColumnEndY) != 1 {
		t.Fatalf("second batch drew %d slots, want 1", len(second.Widths))
	}

	spec.PadShortBatches = true
	padded := layoutOn(t, newRecorder(), spec, 20)
	if got := len(padded.Batches[1].Widths); got != 4 {
		t.Fatalf("padded batch drew %d slots, want 4", got)
	}
	if got := len(padded.Batches[1].ColumnEndY); got != 1 {
		t.Fatalf("padded batch walked %d columns, want 1", got)
	}
}

func TestHeaderLabelsDrawnOncePerDomain(t *testing.T) {
	rec := newRecorder()
	spec := table(4, 1, 1, 1, 1, 1)
	layoutOn(t, rec, spec, 20)
	pages := commands(t, rec)
	for _, d := range spec.Domains {
		if n := countText(pages, d.HeaderLabel()); n != 1 {
			t.Fatalf("header %q drawn %d times", d.HeaderLabel(), n)
		}
	}
}

func TestBatchSynchronization(t *testing.T) {
	spec := table(3, 1, 5, 2, 3, 1)
	res := layoutOn(t, newRecorder(), spec, 20, layout.WithBatchGap(4))
	for i, b := range res.Batches {
		for c, y := range b.ColumnEndY {
			if y > b.MaxY {
				t.Fatalf("batch %d column %d ends at %v past max %v", i, c, y, b.MaxY)
			}
		}
		if i+1 < len(res.Batches) {
			next := res.Batches[i+1]
			if next.HeaderY != b.MaxY+4 {
				t.Fatalf("batch %d header at %v want %v", i+1, next.HeaderY, b.MaxY+4)
			}
		}
	}
	first := res.Batches[0]
	// The five-item column is the tallest.
	if first.MaxY != first.ColumnEndY[1] {
		t.Fatalf("max y %v want tallest column %v", first.MaxY, first.ColumnEndY[1])
	}
	last := res.Batches[len(res.Batches)-1]
	if res.Cursor.Y != last.MaxY+4 {
		t.Fatalf("cursor y %v want %v", res.Cursor.Y, last.MaxY+4)
	}
}

func TestColumnLocalTruncation(t *testing.T) {
	rec := newRecorder()
	spec := table(4, 15, 3)
	res := layoutOn(t, rec, spec, 200, layout.WithContinuesLabel("... continues"))
	b := res.Batches[0]
	if !b.Truncated[0] || b.Truncated[1] {
		t.Fatalf("truncated flags %v want [true false]", b.Truncated)
	}
	// One-line items are 6mm: 209 + 3*6.
	if b.ColumnEndY[1] != 227 {
		t.Fatalf("sibling column end %v want 227", b.ColumnEndY[1])
	}
	pages := commands(t, rec)
	if n := countText(pages, "... continues"); n != 1 {
		t.Fatalf("placeholders got %d want 1", n)
	}
	if len(pages) != 1 {
		t.Fatalf("truncation must not paginate, got %d pages", len(pages))
	}
	for _, c := range pages[0].Commands {
		if c.Kind == canvas.KindText && c.Text != "... continues" && c.Y > 270 {
			t.Fatalf("item drawn below the overflow line: %+v", c)
		}
	}
}

func TestHeaderStartsNewPage(t *testing.T) {
	rec := newRecorder()
	res := layoutOn(t, rec, table(2, 2, 2), 278)
	b := res.Batches[0]
	if b.Page != 1 || res.Cursor.Page != 1 {
		t.Fatalf("page got %d/%d want 1", b.Page, res.Cursor.Page)
	}
	if b.HeaderY != canvas.A4().Margins.Top {
		t.Fatalf("header y %v want top margin", b.HeaderY)
	}
}

func TestLongHeaderGrowsRow(t *testing.T) {
	spec := table(4, 2, 1, 1, 1)
	short := layoutOn(t, newRecorder(), spec, 40)

	spec.Domains[0].Name = "Langue arabe: lecture, ecriture, expression orale et comprehension"
	rec := newRecorder()
	res := layoutOn(t, rec, spec, 40)
	b := res.Batches[0]
	if b.ContentStartY <= b.HeaderY+9 {
		t.Fatalf("header row not raised: header %v content %v", b.HeaderY, b.ContentStartY)
	}
	if diff := cmp.Diff(short.Batches[0].Widths, b.Widths); diff != "" {
		t.Fatalf("slot widths changed:\n%s", diff)
	}

	var header string
	for _, c := range commands(t, rec)[0].Commands {
		if c.Kind != canvas.KindText {
			continue
		}
		if c.Font == canvas.FontBold {
			if c.Y <= b.HeaderY || c.Y >= b.ContentStartY {
				t.Fatalf("header line %q baseline %v outside [%v, %v]", c.Text, c.Y, b.HeaderY, b.ContentStartY)
			}
			header += c.Text + " "
			continue
		}
		if c.Y <= b.ContentStartY {
			t.Fatalf("item %q baseline %v above content start %v", c.Text, c.Y, b.ContentStartY)
		}
	}
	if want := "(25%)"; !strings.Contains(header, want) {
		t.Fatalf("percentage missing from header lines %q", header)
	}
}

func TestHeaderKeep(t *testing.T) {
	// 255 + 9 fits above the content bottom but leaves no room for a row.
	res := layoutOn(t, newRecorder(), table(2, 2), 255, layout.WithHeaderKeep(12))
	if res.Batches[0].Page != 1 {
		t.Fatalf("header kept on page %d", res.Batches[0].Page)
	}
	res = layoutOn(t, newRecorder(), table(2, 2), 255)
	if res.Batches[0].Page != 0 {
		t.Fatalf("without keep the header stays, got page %d", res.Batches[0].Page)
	}
}

func TestItemTallerThanPage(t *testing.T) {
	long := ""
	for i := 0; i < 400; i++ {
		long += "word "
	}
	spec := score.TableSpec{ColumnsPerBatch: 6, TextFraction: 0.5, Domains: []score.Domain{
		{Name: "A", Items: []score.Item{{Label: long, Value: score.Acquired}, {Label: "after", Value: score.Acquired}}},
		{Name: "B", Items: []score.Item{{Label: "fine", Value: score.InProgress}}},
	}}
	res := layoutOn(t, newRecorder(), spec, 20)
	b := res.Batches[0]
	if len(b.Overflows) != 1 || !errors.Is(b.Overflows[0], layout.ErrLayoutOverflow) {
		t.Fatalf("overflows %v", b.Overflows)
	}
	var oe *layout.OverflowError
	if !errors.As(b.Overflows[0], &oe) || oe.Domain != "A" {
		t.Fatalf("overflow error %v", b.Overflows[0])
	}
	if !b.Truncated[0] || b.Truncated[1] {
		t.Fatalf("truncated %v", b.Truncated)
	}
}

func TestIdempotentCommands(t *testing.T) {
	spec := table(3, 4, 2, 7, 1)
	spec.Title = "Academic subjects"
	run := func() []canvas.Page {
		rec := newRecorder()
		layoutOn(t, rec, spec, 30)
		return commands(t, rec)
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Fatalf("layout not idempotent (-first +second):\n%s", diff)
	}
}

func TestRTLMirrorsColumns(t *testing.T) {
	rec := newRecorder()
	spec := table(2, 1, 1)
	layoutOn(t, rec, spec, 20, layout.WithRTL(true))
	pages := commands(t, rec)
	var headers []canvas.Command
	for _, c := range pages[0].Commands {
		if c.Kind == canvas.KindRect && c.Fill && c.H == 9 {
			headers = append(headers, c)
		}
	}
	if len(headers) != 2 {
		t.Fatalf("headers got %d want 2", len(headers))
	}
	if headers[0].X != 105 || headers[1].X != 10 {
		t.Fatalf("rtl header x got %v,%v want 105,10", headers[0].X, headers[1].X)
	}
	// The first label cell sits at the right edge of its slot.
	var label canvas.Command
	for _, c := range pages[0].Commands {
		if c.Kind == canvas.KindRect && c.Stroke && c.Y >= 29 && c.W > 50 {
			label = c
			break
		}
	}
	if math.Abs(label.X+label.W-200) > 1e-9 {
		t.Fatalf("rtl label cell ends at %v want 200", label.X+label.W)
	}
}

func TestEmptyTableDrawsNothing(t *testing.T) {
	rec := newRecorder()
	res := layoutOn(t, rec, score.TableSpec{Title: "Nothing", ColumnsPerBatch: 3, TextFraction: 0.8}, 42)
	if res.Cursor.Y != 42 || len(res.Batches) != 0 {
		t.Fatalf("empty table moved cursor: %+v", res)
	}
	if pages := commands(t, rec); len(pages[0].Commands) != 0 {
		t.Fatalf("empty table drew %d commands", len(pages[0].Commands))
	}
}

func TestInvalidTable(t *testing.T) {
	eng := layout.NewEngine(newRecorder(), nil)
	if _, err := eng.Layout(table(0, 1), layout.Cursor{Y: 20}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestShapingFallbackIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := newRecorder()
	eng := layout.NewEngine(rec, failingShaper{}, layout.WithLogger(observability.NewZapLogger(zap.New(core))))
	spec := table(2, 2)
	if _, err := eng.Layout(spec, layout.Cursor{Y: 20}); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	// One header and two items.
	if n := logs.FilterMessage("text shaping failed, drawing unshaped").Len(); n != 3 {
		t.Fatalf("fallback warnings got %d want 3", n)
	}
	pages := commands(t, rec)
	if countText(pages, spec.Domains[0].Items[0].Label) != 1 {
		t.Fatalf("unshaped label not drawn")
	}
}

package layout_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/layout"
	"github.com/wudi/reportcard/score"
)

// monoMetrics gives every rune a 500 unit advance and spaces 250.
type monoMetrics struct{}

func (monoMetrics) Glyphs(w canvas.Word, _ canvas.FontID) ([]canvas.Glyph, error) {
	if len(w.Glyphs) > 0 {
		return w.Glyphs, nil
	}
	var gs []canvas.Glyph
	for _, r := range w.Text {
		adv := 500.0
		if r == ' ' {
			adv = 250
		}
		gs = append(gs, canvas.Glyph{ID: int(r), Advance: adv, Runes: []rune{r}})
	}
	return gs, nil
}
func (monoMetrics) Ascent(canvas.FontID) float64  { return 800 }
func (monoMetrics) Descent(canvas.FontID) float64 { return 200 }

type failingShaper struct{}

func (failingShaper) Shape(string, canvas.FontID) (canvas.Run, error) {
	return canvas.Run{}, errors.New("no shaping tables")
}

func newRecorder() *canvas.Recorder {
	rec := canvas.NewRecorder(monoMetrics{}, canvas.A4())
	rec.NewPage()
	return rec
}

func domain(name string, n int) score.Domain {
	d := score.Domain{Name: name}
	for i := 0; i < n; i++ {
		d.Items = append(d.Items, score.Item{Label: fmt.Sprintf("%s item %d", name, i), Value: score.Value(i % 3)})
	}
	return d
}

func table(cols int, sizes ...int) score.TableSpec {
	t := score.TableSpec{ColumnsPerBatch: cols, TextFraction: 0.8}
	for i, n := range sizes {
		t.Domains = append(t.Domains, domain(fmt.Sprintf("D%d", i), n))
	}
	return t
}

func layoutOn(t *testing.T, rec *canvas.Recorder, spec score.TableSpec, y float64, opts ...layout.Option) layout.Result {
	t.Helper()
	eng := layout.NewEngine(rec, nil, opts...)
	res, err := eng.Layout(spec, layout.Cursor{X: 10, Y: y, Page: rec.PageIndex()})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return res
}

func commands(t *testing.T, rec *canvas.Recorder) []canvas.Page {
	t.Helper()
	pl, err := rec.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return pl.Pages
}

func countText(pages []canvas.Page, text string) int {
	n := 0
	for _, p := range pages {
		for _, c := range p.Commands {
			if c.Kind == canvas.KindText && c.Text == text {
				n++
			}
		}
	}
	return n
}

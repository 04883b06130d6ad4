package compose_test

import (
	"fmt"
	"testing"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/compose"
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

func newComposer(opts ...compose.Option) (*canvas.Recorder, *compose.Composer) {
	rec := canvas.NewRecorder(monoMetrics{}, canvas.A4())
	eng := layout.NewEngine(rec, nil)
	return rec, compose.New(rec, nil, eng, opts...)
}

func finalize(t *testing.T, rec *canvas.Recorder) []canvas.Page {
	t.Helper()
	pl, err := rec.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return pl.Pages
}

func textCommands(p canvas.Page) []canvas.Command {
	var out []canvas.Command
	for _, c := range p.Commands {
		if c.Kind == canvas.KindText {
			out = append(out, c)
		}
	}
	return out
}

func findText(pages []canvas.Page, text string) (page int, cmd canvas.Command, ok bool) {
	for i, p := range pages {
		for _, c := range textCommands(p) {
			if c.Text == text {
				return i, c, true
			}
		}
	}
	return -1, canvas.Command{}, false
}

func width(c canvas.Command) float64 {
	var adv float64
	for _, g := range c.Glyphs {
		adv += g.Advance
	}
	return adv * c.Size * canvas.PtToMM / 1000
}

func scoredTable(title string, cols int, sizes ...int) score.TableSpec {
	t := score.TableSpec{Title: title, ColumnsPerBatch: cols, TextFraction: 0.85}
	for i, n := range sizes {
		d := score.Domain{Name: fmt.Sprintf("%s%d", title, i)}
		for j := 0; j < n; j++ {
			d.Items = append(d.Items, score.Item{Label: fmt.Sprintf("skill %d", j), Value: score.Value(j % 3)})
		}
		t.Domains = append(t.Domains, d)
	}
	return t
}

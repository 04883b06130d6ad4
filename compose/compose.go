// Package compose assembles a full report page by page: information panel,
// summary, legend, score tables, analysis and signatures.
package compose

import (
	"fmt"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/layout"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/score"
)

// Document is everything drawn into one report.
type Document struct {
	Student    score.Student
	Summary    *score.Summary
	Tables     []score.TableSpec
	Narrative  string
	ActionPlan []score.ActionItem
}

// Labels are the user-visible strings. Summary may contain the {overall}
// and {weaknesses} placeholders; Page may contain {n}.
type Labels struct {
	Title       string
	Subtitle    string
	Page        string
	Name        string
	Level       string
	DateOfBirth string
	Gender      string
	Summary     string
	Status      map[score.Value]string
	Analysis    string
	ActionPlan  string
	Guardian    string
	Principal   string
	Educator    string
}

// DefaultLabels returns English labels.
func DefaultLabels() Labels {
	return Labels{
		Title:       "Comprehensive Assessment Report",
		Subtitle:    "Educational assessment system",
		Page:        "Page {n}",
		Name:        "Name:",
		Level:       "Level:",
		DateOfBirth: "Date of birth:",
		Gender:      "Gender:",
		Summary:     "Overall: {overall}% | Points to strengthen: {weaknesses}",
		Status: map[score.Value]string{
			score.Acquired:    "Acquired",
			score.InProgress:  "In progress",
			score.NotAcquired: "Not acquired",
		},
		Analysis:   "Analysis and recommendations",
		ActionPlan: "Suggested action plan",
		Guardian:   "Guardian signature",
		Principal:  "Principal signature",
		Educator:   "Educator signature",
	}
}

// Signature places the signature block.
type Signature struct {
	// Top is where the block sits unless content already reaches below it.
	Top float64
	// TooLate is the lowest cursor y the block may start from on the same
	// page.
	TooLate         float64
	LabelHeight     float64
	UnderlineOffset float64
	// Inset is the horizontal gap between the underline and the slot edge.
	Inset float64
}

// Styles are the text styles of the non-table sections.
type Styles struct {
	Title     canvas.Style
	Subtitle  canvas.Style
	Footer    canvas.Style
	InfoLabel canvas.Style
	InfoValue canvas.Style
	Summary   canvas.Style
	Legend    canvas.Style
	Heading   canvas.Style
	Body      canvas.Style
	Signature canvas.Style
	PanelFill canvas.Color
}

// DefaultStyles returns the stock look.
func DefaultStyles() Styles {
	grey := canvas.Color{R: 0.4, G: 0.4, B: 0.4}
	return Styles{
		Title:     canvas.Style{Size: 16, LineHeight: 8},
		Subtitle:  canvas.Style{Size: 10, LineHeight: 5, Color: grey},
		Footer:    canvas.Style{Size: 8, LineHeight: 4, Color: grey},
		InfoLabel: canvas.Style{Size: 10, LineHeight: 5, Padding: 1},
		InfoValue: canvas.Style{Size: 10, LineHeight: 5, Padding: 1},
		Summary:   canvas.Style{Size: 10, LineHeight: 5, Padding: 1},
		Legend:    canvas.Style{Size: 9, LineHeight: 5},
		Heading:   canvas.Style{Size: 13, LineHeight: 7},
		Body:      canvas.Style{Size: 10, LineHeight: 5.5},
		Signature: canvas.Style{Size: 10, LineHeight: 5},
		PanelFill: canvas.Color{R: 0.96, G: 0.97, B: 0.99},
	}
}

// Composer draws a Document section by section. Each section starts where
// the previous one ended.
type Composer struct {
	cv  canvas.Canvas
	sh  canvas.Shaper
	eng *layout.Engine

	margins     canvas.Margins
	rtl         bool
	labels      Labels
	styles      Styles
	sig         Signature
	infoHeight  float64
	sectionGap  float64
	symbolColor map[score.Value]canvas.Color
	decorate    bool
	log         observability.Logger

	results []layout.Result
}

// Option configures a Composer.
type Option func(*Composer)

// WithLabels sets the user-visible strings.
func WithLabels(l Labels) Option {
	return func(c *Composer) {
		c.labels = l
	}
}

// WithStyles sets the section styles.
func WithStyles(s Styles) Option {
	return func(c *Composer) {
		c.styles = s
	}
}

// WithSignature sets the signature block placement.
func WithSignature(s Signature) Option {
	return func(c *Composer) {
		c.sig = s
	}
}

// WithInfoHeight sets the fixed height of the information panel.
func WithInfoHeight(h float64) Option {
	return func(c *Composer) {
		c.infoHeight = h
	}
}

// WithSectionGap sets the vertical gap between sections.
func WithSectionGap(g float64) Option {
	return func(c *Composer) {
		c.sectionGap = g
	}
}

// WithDecoration turns the per-page title and footer on or off.
func WithDecoration(on bool) Option {
	return func(c *Composer) {
		c.decorate = on
	}
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.log = l
		}
	}
}

// PageHooker is implemented by canvases that can decorate new pages.
type PageHooker interface {
	OnNewPage(h canvas.PageHook)
}

// New creates a composer. Margins, direction and symbol colours are taken
// from the layout engine so tables and the other sections line up.
func New(cv canvas.Canvas, sh canvas.Shaper, eng *layout.Engine, opts ...Option) *Composer {
	c := &Composer{
		cv:          cv,
		sh:          sh,
		eng:         eng,
		margins:     eng.Margins,
		rtl:         eng.RTL,
		labels:      DefaultLabels(),
		styles:      DefaultStyles(),
		infoHeight:  35,
		sectionGap:  5,
		symbolColor: eng.Styles.SymbolColors,
		decorate:    true,
		sig: Signature{
			Top:             250,
			TooLate:         255,
			LabelHeight:     6,
			UnderlineOffset: 18,
			Inset:           8,
		},
		log: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if h, ok := cv.(PageHooker); ok && c.decorate {
		h.OnNewPage(c.decoratePage)
	}
	return c
}

// Results returns the layout results of the tables drawn so far.
func (c *Composer) Results() []layout.Result { return c.results }

// Compose draws doc. Drawing errors are reported by the canvas when it is
// finalized; Compose only fails on invalid tables.
func (c *Composer) Compose(doc Document) error {
	if c.cv.PageIndex() < 0 {
		c.cv.NewPage()
	}
	cur := layout.Cursor{X: c.margins.Left, Y: c.cv.CurrentY(), Page: c.cv.PageIndex()}

	cur = c.InfoPanel(doc.Student, cur)
	if doc.Summary != nil {
		cur = c.SummaryLine(*doc.Summary, cur)
	}
	cur = c.Legend(cur)
	for _, t := range doc.Tables {
		if t.Empty() {
			c.log.Debug("skipping empty table", observability.String("title", t.Title))
			continue
		}
		res, err := c.eng.Layout(t, cur)
		if err != nil {
			return fmt.Errorf("table %q: %w", t.Title, err)
		}
		for _, b := range res.Batches {
			for _, o := range b.Overflows {
				c.log.Warn("item replaced by placeholder", observability.Error("error", o))
			}
		}
		c.results = append(c.results, res)
		cur = res.Cursor
	}
	cur = c.Analysis(doc.Narrative, doc.ActionPlan, cur)
	c.Signatures(cur)
	return nil
}

func (c *Composer) shape(text string, font canvas.FontID) canvas.Run {
	return layout.ShapeOrRaw(c.sh, c.log, text, font, c.rtl)
}

func (c *Composer) contentWidth() float64 { return c.cv.PageContentWidth() }

func (c *Composer) contentBottom() float64 { return c.eng.ContentBottom }

func (c *Composer) newPage(cur layout.Cursor) layout.Cursor {
	c.cv.NewPage()
	cur.Y = c.margins.Top
	cur.Page = c.cv.PageIndex()
	return cur
}

// mirror returns the x of a span [x, x+w) measured from the start edge.
func (c *Composer) mirror(x, w float64) float64 {
	if !c.rtl {
		return c.margins.Left + x
	}
	return c.margins.Left + c.contentWidth() - x - w
}

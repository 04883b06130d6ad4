// Package report drives a full assessment report: it parses a request,
// lays the document out on a recording canvas and renders the PDF.
package report

import (
	"compress/flate"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/compose"
	"github.com/wudi/reportcard/config"
	"github.com/wudi/reportcard/fonts"
	"github.com/wudi/reportcard/ir/raw"
	"github.com/wudi/reportcard/ir/semantic"
	"github.com/wudi/reportcard/layout"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/render"
	"github.com/wudi/reportcard/score"
	"github.com/wudi/reportcard/writer"
)

const producer = "reportcard"

// Result is one generated report.
type Result struct {
	ID      uuid.UUID
	PDF     []byte
	Layout  *canvas.PageLayout
	Pages   int
	Summary score.Summary
	// Tables holds the per-batch geometry of every table drawn.
	Tables []layout.Result
}

// Generator turns requests into reports. It holds only configuration and
// font bytes; every Generate call builds its own canvas, faces and shaper,
// so one Generator may serve concurrent calls.
type Generator struct {
	cfg     *config.Config
	regular []byte
	bold    []byte
	dir     fonts.Direction

	log    observability.Logger
	tracer observability.Tracer
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger passed down to the layout engine and composer.
func WithLogger(l observability.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithTracer sets the tracer wrapping the compose and render phases.
func WithTracer(t observability.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// New validates cfg and loads the configured fonts. Empty font paths fall
// back to the bundled Go fonts.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dir, err := fonts.ParseDirection(cfg.Direction)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	g := &Generator{
		cfg:    cfg,
		dir:    dir,
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.regular, err = loadFont(cfg.Fonts.Regular, fonts.DefaultRegular); err != nil {
		return nil, err
	}
	if g.bold, err = loadFont(cfg.Fonts.Bold, fonts.DefaultBold); err != nil {
		return nil, err
	}
	if _, err := fonts.NewSet(g.regular, g.bold); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	return g, nil
}

func loadFont(path string, fallback func() []byte) ([]byte, error) {
	if path == "" {
		return fallback(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return data, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() *config.Config { return g.cfg }

// Generate lays out and renders req. On error no output is returned.
func (g *Generator) Generate(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, &score.InputShapeError{Reason: "nil request"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.New()
	log := g.log.With(observability.String("report_id", id.String()), observability.String("student", req.Student.Name))

	set, err := fonts.NewSet(g.regular, g.bold)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	summary := score.Summarize(req.Sections...)
	tables := g.tables(req.Sections)

	pl, results, err := g.compose(ctx, set, log, compose.Document{
		Student:    req.Student,
		Summary:    &summary,
		Tables:     tables,
		Narrative:  req.Narrative,
		ActionPlan: req.ActionPlan,
	})
	if err != nil {
		return nil, err
	}

	pdf, err := g.render(ctx, pl, set, req)
	if err != nil {
		return nil, err
	}
	log.Info("report generated",
		observability.Int("pages", len(pl.Pages)),
		observability.Int("tables", len(results)),
		observability.Int("bytes", len(pdf)))
	return &Result{
		ID:      id,
		PDF:     pdf,
		Layout:  pl,
		Pages:   len(pl.Pages),
		Summary: summary,
		Tables:  results,
	}, nil
}

func (g *Generator) compose(ctx context.Context, set *fonts.Set, log observability.Logger, doc compose.Document) (_ *canvas.PageLayout, _ []layout.Result, err error) {
	_, span := g.tracer.StartSpan(ctx, observability.SpanCompose)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	sh := fonts.NewShaper(set, g.dir)
	rec := canvas.NewRecorder(set, g.geometry())
	eng := layout.NewEngine(rec, sh, g.engineOptions(log)...)
	c := compose.New(rec, sh, eng, g.composeOptions(log)...)
	if err := c.Compose(doc); err != nil {
		return nil, nil, fmt.Errorf("compose: %w", err)
	}
	pl, err := rec.Finalize()
	if err != nil {
		return nil, nil, fmt.Errorf("compose: %w", err)
	}
	span.SetTag(observability.MetricPageCount, len(pl.Pages))
	return pl, c.Results(), nil
}

func (g *Generator) render(ctx context.Context, pl *canvas.PageLayout, set *fonts.Set, req *Request) (_ []byte, err error) {
	ctx, span := g.tracer.StartSpan(ctx, observability.SpanRender)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	out := g.cfg.Output
	objects := &objectCounter{}
	rcfg := render.Config{
		Deterministic: out.Deterministic,
		Lang:          out.Lang,
		Subset:        out.Subset,
		Interceptors:  []writer.Interceptor{objects},
	}
	if out.Compress {
		rcfg.Compression = flate.BestCompression
	}
	info := &semantic.DocumentInfo{
		Title:    g.cfg.Labels.Title,
		Subject:  req.Student.Name,
		Creator:  producer,
		Producer: producer,
	}
	pdf, err := render.PDF(ctx, pl, set, info, rcfg)
	if err != nil {
		return nil, err
	}
	span.SetTag(observability.MetricOutputBytes, len(pdf))
	span.SetTag(observability.MetricObjectCount, objects.n)
	return pdf, nil
}

// objectCounter counts the indirect objects written for one document.
type objectCounter struct{ n int }

func (o *objectCounter) AfterWrite(context.Context, raw.ObjectRef, int64) error {
	o.n++
	return nil
}

// tables orders sections by the configured table list; sections without a
// table entry follow in request order with the default table settings.
func (g *Generator) tables(sections []score.Section) []score.TableSpec {
	byKey := make(map[string][]score.Section, len(sections))
	for _, s := range sections {
		byKey[s.Key] = append(byKey[s.Key], s)
	}
	var out []score.TableSpec
	for _, tc := range g.cfg.Tables {
		for _, s := range byKey[tc.Key] {
			out = append(out, tableSpec(tc, s))
		}
		delete(byKey, tc.Key)
	}
	for _, s := range sections {
		if _, ok := byKey[s.Key]; ok {
			out = append(out, tableSpec(g.cfg.Table(s.Key), s))
		}
	}
	return out
}

func tableSpec(tc config.TableConfig, s score.Section) score.TableSpec {
	return score.TableSpec{
		Title:           tc.Title,
		Domains:         s.Domains,
		ColumnsPerBatch: tc.Columns,
		TextFraction:    tc.TextFraction,
		PadShortBatches: tc.Pad,
	}
}

func (g *Generator) geometry() canvas.Geometry {
	p := g.cfg.Page
	return canvas.Geometry{
		Width:  p.Width,
		Height: p.Height,
		Margins: canvas.Margins{
			Top:    p.Margins.Top,
			Right:  p.Margins.Right,
			Bottom: p.Margins.Bottom,
			Left:   p.Margins.Left,
		},
	}
}

func (g *Generator) engineOptions(log observability.Logger) []layout.Option {
	c := g.cfg
	st := layout.DefaultStyles()
	st.Item.Size = c.Fonts.ItemSize
	st.Item.LineHeight = c.Fonts.ItemLineHeight
	st.Item.Padding = c.Layout.Padding
	st.Header.Size = c.Fonts.HeaderSize
	st.Header.LineHeight = c.Fonts.HeaderLineHeight
	st.Header.Padding = c.Layout.Padding
	st.SymbolSize = c.Layout.SymbolSize
	return []layout.Option{
		layout.WithMargins(g.geometry().Margins),
		layout.WithHeaderHeight(c.Layout.HeaderHeight),
		layout.WithOverflowY(c.Layout.OverflowY),
		layout.WithContentBottom(c.ContentBottom()),
		layout.WithBatchGap(c.Layout.BatchGap),
		layout.WithHeaderKeep(c.Layout.HeaderKeep),
		layout.WithStyles(st),
		layout.WithRTL(c.RTL()),
		layout.WithContinuesLabel(c.Labels.Continues),
		layout.WithLogger(log),
	}
}

func (g *Generator) composeOptions(log observability.Logger) []compose.Option {
	c := g.cfg
	l := c.Labels
	st := compose.DefaultStyles()
	st.Body.Size = c.Fonts.BodySize
	st.Body.LineHeight = c.Fonts.BodyLineHeight
	return []compose.Option{
		compose.WithLabels(compose.Labels{
			Title:       l.Title,
			Subtitle:    l.Subtitle,
			Page:        l.Page,
			Name:        l.Name,
			Level:       l.Level,
			DateOfBirth: l.DateOfBirth,
			Gender:      l.Gender,
			Summary:     l.Summary,
			Status: map[score.Value]string{
				score.Acquired:    l.Acquired,
				score.InProgress:  l.InProgress,
				score.NotAcquired: l.NotAcquired,
			},
			Analysis:   l.Analysis,
			ActionPlan: l.ActionPlan,
			Guardian:   l.Guardian,
			Principal:  l.Principal,
			Educator:   l.Educator,
		}),
		compose.WithStyles(st),
		compose.WithSignature(compose.Signature{
			Top:             c.Signature.Top,
			TooLate:         c.Signature.TooLate,
			LabelHeight:     c.Signature.LabelHeight,
			UnderlineOffset: c.Signature.UnderlineOffset,
			Inset:           8,
		}),
		compose.WithLogger(log),
	}
}

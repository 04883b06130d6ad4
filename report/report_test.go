package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/reportcard/config"
	"github.com/wudi/reportcard/observability"
	"github.com/wudi/reportcard/score"
)

const sampleRequest = `
student:
  name: Sara
  level: 2A
  date_of_birth: "2016-03-01"
evaluations:
  behavioral:
    Conduct:
      Listens: 2
      Shares: 1
  academic:
    Maths:
      Addition: 2
      Subtraction: 0
    Reading:
      Letters: 1
  extra:
    Art:
      Drawing: 2
narrative: |
  ## Notes
  Good progress.
action_plan:
  - item: Subtraction
    action: Daily drills
`

func mustRequest(t *testing.T) *Request {
	t.Helper()
	req, err := ParseRequest([]byte(sampleRequest))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	return req
}

func newGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Deterministic = true
	g, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestParseRequest(t *testing.T) {
	req := mustRequest(t)
	want := score.Student{Name: "Sara", Level: "2A", DateOfBirth: "2016-03-01"}
	if diff := cmp.Diff(want, req.Student); diff != "" {
		t.Fatalf("student mismatch (-want +got):\n%s", diff)
	}
	var keys []string
	for _, s := range req.Sections {
		keys = append(keys, s.Key)
	}
	if diff := cmp.Diff([]string{"behavioral", "academic", "extra"}, keys); diff != "" {
		t.Fatalf("section order (-want +got):\n%s", diff)
	}
	if !strings.Contains(req.Narrative, "Good progress.") {
		t.Fatalf("narrative got %q", req.Narrative)
	}
	if diff := cmp.Diff([]score.ActionItem{{Item: "Subtraction", Action: "Daily drills"}}, req.ActionPlan); diff != "" {
		t.Fatalf("action plan (-want +got):\n%s", diff)
	}
}

func TestParseRequestJSON(t *testing.T) {
	req, err := ParseRequest([]byte(`{"student":{"name":"Ali"},"evaluations":{"academic":{"Maths":{"Add":2}}}}`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Student.Name != "Ali" || len(req.Sections) != 1 || req.Sections[0].Domains[0].Items[0].Value != score.Acquired {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestParseRequestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		path string
	}{
		{"unknown key", "students: {}\n", "students"},
		{"bad score", "evaluations:\n  academic:\n    Maths:\n      Add: 5\n", "academic.Maths.Add"},
		{"mixed grouping", "evaluations:\n  academic:\n    Maths: 2\n    Reading:\n      Letters: 1\n", "academic"},
		{"not a mapping", "- a\n- b\n", ""},
		{"bad action plan", "action_plan: nope\n", "action_plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.in))
			var se *score.InputShapeError
			if !errors.As(err, &se) {
				t.Fatalf("expected InputShapeError, got %v", err)
			}
			if got := strings.Join(se.Path, "."); !strings.HasPrefix(got, tt.path) {
				t.Fatalf("path got %q want prefix %q", got, tt.path)
			}
		})
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sara.yaml")
	if err := os.WriteFile(path, []byte(sampleRequest), 0o644); err != nil {
		t.Fatal(err)
	}
	req, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	if req.Student.Name != "Sara" {
		t.Fatalf("name got %q", req.Student.Name)
	}
	if _, err := LoadRequest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Direction = "up"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected invalid direction error")
	}

	cfg = config.DefaultConfig()
	cfg.Fonts.Regular = filepath.Join(t.TempDir(), "missing.ttf")
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected missing font error")
	}

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg = config.DefaultConfig()
	cfg.Fonts.Bold = bad
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected invalid font error")
	}
}

func TestGenerate(t *testing.T) {
	g := newGenerator(t)
	res, err := g.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ID == uuid.Nil {
		t.Fatalf("missing report id")
	}
	if !bytes.HasPrefix(res.PDF, []byte("%PDF-")) || !bytes.HasSuffix(bytes.TrimSpace(res.PDF), []byte("%%EOF")) {
		t.Fatalf("output is not a PDF")
	}
	if res.Pages < 1 || res.Pages != len(res.Layout.Pages) {
		t.Fatalf("pages got %d, layout has %d", res.Pages, len(res.Layout.Pages))
	}
	if len(res.Tables) != 3 {
		t.Fatalf("tables got %d want 3", len(res.Tables))
	}
	if res.Summary.Total != 8 || res.Summary.Max != 12 {
		t.Fatalf("summary got %d/%d want 8/12", res.Summary.Total, res.Summary.Max)
	}
	if diff := cmp.Diff([]string{"Subtraction"}, res.Summary.Weaknesses); diff != "" {
		t.Fatalf("weaknesses (-want +got):\n%s", diff)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := newGenerator(t)
	a, err := g.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := g.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(a.PDF, b.PDF) {
		t.Fatalf("deterministic output differs")
	}
	if a.ID == b.ID {
		t.Fatalf("report ids should differ")
	}
}

func TestGenerateCancelled(t *testing.T) {
	g := newGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := g.Generate(ctx, mustRequest(t))
	if !errors.Is(err, context.Canceled) || res != nil {
		t.Fatalf("got %v, %v; want nil, context.Canceled", res, err)
	}
}

func TestGenerateNilRequest(t *testing.T) {
	g := newGenerator(t)
	res, err := g.Generate(context.Background(), nil)
	var se *score.InputShapeError
	if !errors.As(err, &se) || res != nil {
		t.Fatalf("got %v, %v; want InputShapeError and no output", res, err)
	}
}

func TestTableOrder(t *testing.T) {
	g := newGenerator(t)
	req := mustRequest(t)
	specs := g.tables(req.Sections)
	var titles []string
	for _, s := range specs {
		titles = append(titles, s.Title)
	}
	want := []string{"المواد الدراسية", "المهارات السلوكية والوظائف الذهنية", "extra"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("table order (-want +got):\n%s", diff)
	}
	if specs[0].ColumnsPerBatch != 4 || specs[1].ColumnsPerBatch != 3 || specs[2].ColumnsPerBatch != 4 {
		t.Fatalf("columns got %d/%d/%d", specs[0].ColumnsPerBatch, specs[1].ColumnsPerBatch, specs[2].ColumnsPerBatch)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGenerator(t)
	var eg errgroup.Group
	out := make([][]byte, 4)
	for i := range out {
		i := i
		eg.Go(func() error {
			res, err := g.Generate(context.Background(), mustRequest(t))
			if err != nil {
				return err
			}
			out[i] = res.PDF
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if !bytes.Equal(out[0], out[i]) {
			t.Fatalf("output %d differs", i)
		}
	}
}

func TestGenerateLogsAndTraces(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := observability.NewZapLogger(zap.New(core))
	g := newGenerator(t, WithLogger(log), WithTracer(observability.LogTracer(log)))
	res, err := g.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	done := logs.FilterMessage("report generated").All()
	if len(done) != 1 {
		t.Fatalf("report generated entries got %d want 1", len(done))
	}
	fields := done[0].ContextMap()
	if fields["report_id"] != res.ID.String() || fields["student"] != "Sara" || fields["pages"] != int64(res.Pages) {
		t.Fatalf("unexpected fields %v", fields)
	}

	spans := map[string]map[string]interface{}{}
	for _, e := range logs.FilterMessage("span finished").All() {
		m := e.ContextMap()
		spans[m["span"].(string)] = m
	}
	if spans[observability.SpanCompose][observability.MetricPageCount] != int64(res.Pages) {
		t.Fatalf("compose span %v", spans[observability.SpanCompose])
	}
	rs := spans[observability.SpanRender]
	if rs[observability.MetricOutputBytes] != int64(len(res.PDF)) {
		t.Fatalf("render span %v", rs)
	}
	objs, _ := rs[observability.MetricObjectCount].(int64)
	if want := int64(bytes.Count(res.PDF, []byte(" obj\n"))); objs == 0 || objs != want {
		t.Fatalf("render span objects = %v, want %d", rs[observability.MetricObjectCount], want)
	}
}

func TestWriteText(t *testing.T) {
	req := mustRequest(t)
	labels := config.DefaultConfig().Labels
	labels.Title = "Report"
	labels.Summary = "Overall: {overall}% ({weaknesses} weak)"
	labels.ActionPlan = "Plan"

	var buf bytes.Buffer
	if err := WriteText(&buf, req, score.Summarize(req.Sections...), labels); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		"Report: Sara\n" + strings.Repeat("=", 20) + "\n",
		"Overall: 67% (1 weak)\n",
		"\nacademic\n- Maths (50%)\n- Reading (50%)\n",
		"- Conduct (75%)\n",
		"Good progress.\n",
		strings.Repeat("-", 20) + "\nPlan:\n- Subtraction: Daily drills\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

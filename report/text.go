package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wudi/reportcard/config"
	"github.com/wudi/reportcard/score"
)

// WriteText writes a plain-text rendition of the report: title and student,
// the overall percentage, one line per domain, the narrative and the action
// plan.
func WriteText(w io.Writer, req *Request, summary score.Summary, labels config.LabelsConfig) error {
	var b strings.Builder
	rule := func(c string) { b.WriteString(strings.Repeat(c, 20) + "\n") }

	fmt.Fprintf(&b, "%s: %s\n", labels.Title, req.Student.Name)
	rule("=")
	for _, f := range []struct{ label, value string }{
		{labels.Level, req.Student.Level},
		{labels.DateOfBirth, req.Student.DateOfBirth},
		{labels.Gender, req.Student.Gender},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s %s\n", f.label, f.value)
		}
	}
	b.WriteString(strings.NewReplacer(
		"{overall}", strconv.FormatFloat(summary.Overall, 'f', 0, 64),
		"{weaknesses}", strconv.Itoa(len(summary.Weaknesses)),
	).Replace(labels.Summary) + "\n")

	for _, sec := range req.Sections {
		if len(sec.Domains) == 0 {
			continue
		}
		b.WriteString("\n" + sec.Key + "\n")
		for _, d := range sec.Domains {
			b.WriteString("- " + d.HeaderLabel() + "\n")
		}
	}

	if n := strings.TrimSpace(req.Narrative); n != "" {
		b.WriteString("\n")
		b.WriteString(labels.Analysis + "\n")
		b.WriteString(n + "\n")
	}
	if len(req.ActionPlan) > 0 {
		rule("-")
		b.WriteString(labels.ActionPlan + ":\n")
		for _, a := range req.ActionPlan {
			fmt.Fprintf(&b, "- %s: %s\n", a.Item, a.Action)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

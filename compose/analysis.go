package compose

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/reportcard/canvas"
	"github.com/wudi/reportcard/layout"
	"github.com/wudi/reportcard/score"
)

// block is one flattened markdown block.
type block struct {
	text    string
	heading bool
}

// flattenMarkdown reduces markdown to plain paragraphs. Inline styling is
// dropped and list items become "- " lines.
func flattenMarkdown(source string) []block {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	var out []block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		out = appendBlock(out, n, src)
	}
	return out
}

func appendBlock(out []block, n ast.Node, src []byte) []block {
	switch n := n.(type) {
	case *ast.Heading:
		return append(out, block{text: inlineText(n, src), heading: true})
	case *ast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			var parts []string
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				if t := inlineText(child, src); t != "" {
					parts = append(parts, t)
				}
			}
			out = append(out, block{text: "- " + strings.Join(parts, " ")})
		}
		return out
	case *ast.Blockquote:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			out = appendBlock(out, child, src)
		}
		return out
	case *ast.ThematicBreak:
		return out
	}
	if t := inlineText(n, src); t != "" {
		out = append(out, block{text: t})
	}
	return out
}

// inlineText concatenates the text below n, turning line breaks into
// spaces.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(bytes.TrimRight(seg.Value(src), "\r\n"))
			buf.WriteByte(' ')
		}
		return strings.Join(strings.Fields(buf.String()), " ")
	}
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Analysis draws the narrative and the action plan on a fresh page. Each
// paragraph is wrapped to the content width and flows line by line onto
// further pages. Nothing is drawn when both are empty.
func (c *Composer) Analysis(narrative string, plan []score.ActionItem, cur layout.Cursor) layout.Cursor {
	blocks := flattenMarkdown(narrative)
	if len(blocks) == 0 && len(plan) == 0 {
		return cur
	}
	cur = c.newPage(cur)
	cur = c.paragraph(c.labels.Analysis, true, cur)
	for _, b := range blocks {
		cur = c.paragraph(b.text, b.heading, cur)
	}
	if len(plan) > 0 {
		cur.Y += c.sectionGap / 2
		cur = c.paragraph(c.labels.ActionPlan, true, cur)
		for _, a := range plan {
			cur = c.paragraph("- "+a.Item+": "+a.Action, false, cur)
		}
	}
	return cur
}

func (c *Composer) paragraph(s string, heading bool, cur layout.Cursor) layout.Cursor {
	st, font := c.styles.Body, canvas.FontRegular
	if heading {
		st, font = c.styles.Heading, canvas.FontBold
	}
	width := c.contentWidth()
	for _, line := range c.cv.WrapText(c.shape(s, font), st, width) {
		cur = c.ensure(cur, st.LineHeight)
		c.cv.DrawText(canvas.Box{X: c.margins.Left, Y: cur.Y, W: width, H: st.LineHeight, Align: canvas.AlignStart}, line, st)
		cur.Y += st.LineHeight
	}
	cur.Y += st.LineHeight / 3
	return cur
}

package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/wudi/reportcard/ir/raw"
	"github.com/wudi/reportcard/ir/semantic"
)

type impl struct{ interceptors []Interceptor }

func (w *impl) SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error) {
	if obj == nil {
		return nil, fmt.Errorf("serialize %s: nil object", ref)
	}
	out := fmt.Appendf(nil, "%d %d obj\n", ref.Num, ref.Gen)
	out = obj.AppendPDF(out)
	return append(out, "\nendobj\n"...), nil
}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) error {
	if doc == nil || len(doc.Pages) == 0 {
		return fmt.Errorf("write pdf: document has no pages")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	objects, catalog, info, err := newObjectBuilder(doc, cfg).build(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-" + pdfVersion(cfg) + "\n%\xE2\xE3\xCF\xD3\n")

	refs := make([]raw.ObjectRef, 0, len(objects))
	for ref := range objects {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })
	offsets := make(map[int]int, len(refs))
	for _, ref := range refs {
		offsets[ref.Num] = buf.Len()
		obj, err := w.SerializeObject(ref, objects[ref])
		if err != nil {
			return err
		}
		buf.Write(obj)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, ref, int64(len(obj))); err != nil {
				return fmt.Errorf("interceptor after %s: %w", ref, err)
			}
		}
	}

	xref := buf.Len()
	size := refs[len(refs)-1].Num + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for i := 1; i < size; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	buf.WriteString("trailer\n")
	buf.Write(trailer(size, catalog, info, fileID(doc, cfg)).AppendPDF(nil))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xref)

	_, err = out.Write(buf.Bytes())
	return err
}

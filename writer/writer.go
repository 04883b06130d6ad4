// Package writer serializes a semantic.Document into PDF bytes.
package writer

import (
	"context"
	"io"

	"github.com/wudi/reportcard/ir/raw"
	"github.com/wudi/reportcard/ir/semantic"
)

type PDFVersion string

const (
	PDF17 PDFVersion = "1.7"
)

// Config controls serialization. Compression is a compress/flate level
// applied to content and font streams; zero writes them uncompressed.
// Deterministic output omits the creation date and derives the file ID from
// the document so identical input yields identical bytes.
type Config struct {
	Version       PDFVersion
	Compression   int
	Deterministic bool
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

// Interceptor observes each indirect object as it is written.
type Interceptor interface {
	AfterWrite(ctx context.Context, ref raw.ObjectRef, bytesWritten int64) error
}

type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}
func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }

// New returns a Writer without interceptors.
func New() Writer { return (&WriterBuilder{}).Build() }

// Package observability defines the logging and tracing hooks the generator
// reports through. Callers plug in zap via NewZapLogger or keep the no-op
// defaults.
package observability

import "context"

// Logger is a leveled structured logger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is one key/value pair attached to a log entry or span.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field        { return Field{key, value} }
func Int(key string, value int) Field       { return Field{key, value} }
func Int64(key string, value int64) Field   { return Field{key, value} }
func Float(key string, value float64) Field { return Field{key, value} }
func Bool(key string, value bool) Field     { return Field{key, value} }
func Error(key string, err error) Field     { return Field{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Tracer opens a span around one stage of report generation.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

type Span interface {
	SetTag(key string, value any)
	SetError(err error)
	Finish()
}

// NopTracer returns a tracer whose spans record nothing.
func NopTracer() Tracer { return nopTracer{} }

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) SetTag(string, any) {}
func (nopSpan) SetError(error)     {}
func (nopSpan) Finish()            {}

// Span names and span tags emitted by the generator.
const (
	SpanCompose       = "report.compose"
	SpanRender        = "report.render"
	MetricPageCount   = "report.pages.count"
	MetricOutputBytes = "report.output.bytes"
	MetricObjectCount = "report.pdf.objects"
)

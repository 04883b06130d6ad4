package observability

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type zapLogger struct{ l *zap.Logger }

// NewZapLogger adapts a zap logger. A nil logger yields NopLogger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return zapLogger{l: l}
}

func (z zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, zapFields(fields)...) }
func (z zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, zapFields(fields)...) }
func (z zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, zapFields(fields)...) }
func (z zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, zapFields(fields)...) }

func (z zapLogger) With(fields ...Field) Logger {
	return zapLogger{l: z.l.With(zapFields(fields)...)}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// LogTracer returns a tracer that logs every finished span at debug level
// with its duration, tags and error.
func LogTracer(l Logger) Tracer { return logTracer{l: l} }

type logTracer struct{ l Logger }

func (t logTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &logSpan{l: t.l, name: name, start: time.Now()}
}

type logSpan struct {
	l      Logger
	name   string
	start  time.Time
	fields []Field
	err    error
}

func (s *logSpan) SetTag(key string, value any) {
	s.fields = append(s.fields, Field{key, value})
}

func (s *logSpan) SetError(err error) { s.err = err }

func (s *logSpan) Finish() {
	fields := append([]Field{
		String("span", s.name),
		Int64("duration_us", time.Since(s.start).Microseconds()),
	}, s.fields...)
	if s.err != nil {
		fields = append(fields, Error("error", s.err))
	}
	s.l.Debug("span finished", fields...)
}

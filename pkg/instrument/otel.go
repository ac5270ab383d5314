package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// Default tracer name for pulse runtimes.
const defaultTracerName = "pulse"

// TraceConfig configures the OpenTelemetry adapter.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "pulse").
	TracerName string

	// Filter determines which reaction runs to trace.
	// Return true to trace the run, false to skip.
	// If nil, all runs are traced.
	Filter func(e pulse.Event) bool

	// AttributeExtractor extracts custom attributes from the event.
	// Called for each traced run.
	AttributeExtractor func(e pulse.Event) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures the OpenTelemetry adapter.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithFilter sets a filter function for reaction runs.
func WithFilter(filter func(e pulse.Event) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(e pulse.Event) []attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.AttributeExtractor = extractor
	}
}

// Trace emits one span per completed reaction run. The span's start time is
// reconstructed from the run duration so span length matches run length.
// Contained failures are recorded on the span with error status.
//
// The returned function removes the hook.
func Trace(rt *pulse.Runtime, opts ...TraceOption) func() {
	cfg := TraceConfig{
		TracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.tracer = otel.Tracer(cfg.TracerName)

	return rt.OnEvent(func(e pulse.Event) {
		if e.Kind != pulse.EventReactionRun {
			return
		}
		if cfg.Filter != nil && !cfg.Filter(e) {
			return
		}

		end := time.Now()
		start := end.Add(-e.Duration)

		name := e.Name
		if name == "" {
			name = "reaction"
		}

		attrs := []attribute.KeyValue{
			attribute.Int64("pulse.reaction.id", int64(e.ID)),
			attribute.String("pulse.reaction.name", e.Name),
		}
		if cfg.AttributeExtractor != nil {
			attrs = append(attrs, cfg.AttributeExtractor(e)...)
		}

		_, span := cfg.tracer.Start(context.Background(), name,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithTimestamp(start),
			trace.WithAttributes(attrs...),
		)

		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		span.End(trace.WithTimestamp(end))
	})
}

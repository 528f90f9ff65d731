package trace

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/noah-isme/gema-eval-go/pkg/config"
)

// ParentProcessor stamps every started span with the gema.parent routing
// attribute. Precedence: an attribute already present on the span, then the
// parent carried by the context, then the configured default project.
type ParentProcessor struct {
	fallback string
}

// NewParentProcessor builds a processor whose fallback parent comes from the
// default project settings.
func NewParentProcessor(cfg config.Config) *ParentProcessor {
	return &ParentProcessor{fallback: cfg.ParentValue()}
}

// OnStart implements sdktrace.SpanProcessor.
func (p *ParentProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	for _, attr := range s.Attributes() {
		if attr.Key == AttrParent {
			return
		}
	}

	value := ParentFromContext(parent)
	if value == "" {
		value = p.fallback
	}
	if value == "" {
		return
	}
	s.SetAttributes(AttrParent.String(value))
}

// OnEnd implements sdktrace.SpanProcessor.
func (p *ParentProcessor) OnEnd(sdktrace.ReadOnlySpan) {}

// Shutdown implements sdktrace.SpanProcessor.
func (p *ParentProcessor) Shutdown(context.Context) error { return nil }

// ForceFlush implements sdktrace.SpanProcessor.
func (p *ParentProcessor) ForceFlush(context.Context) error { return nil }

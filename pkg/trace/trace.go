// Package trace sets up OpenTelemetry export to the GEMA platform. Spans are
// routed server-side by the gema.parent attribute, which the span processor
// stamps from the active context or the configured default project.
package trace

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-eval-go/pkg/config"
	gemalog "github.com/noah-isme/gema-eval-go/pkg/log"
)

const (
	instrumentationName    = "github.com/noah-isme/gema-eval-go"
	instrumentationVersion = "0.1.0"
)

// Span attributes understood by the platform ingestion endpoint.
var (
	AttrParent                = attribute.Key("gema.parent")
	AttrParentType            = attribute.Key("gema.parent.type")
	AttrUsagePromptTokens     = attribute.Key("gema.usage.prompt_tokens")
	AttrUsageCompletionTokens = attribute.Key("gema.usage.completion_tokens")
	AttrUsageTotalTokens      = attribute.Key("gema.usage.total_tokens")
)

// Quickstart builds a tracer provider exporting to the platform trace
// endpoint and registers it globally. Callers own shutdown:
//
//	tp, err := trace.Quickstart(ctx, cfg, "my-service")
//	defer tp.Shutdown(ctx)
func Quickstart(ctx context.Context, cfg config.Config, serviceName string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.TracesURL()),
		otlptracehttp.WithHeaders(map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(semconv.ServiceName(serviceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(NewParentProcessor(cfg)),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
	)
	otel.SetTracerProvider(tp)

	if cfg.Debug {
		gemalog.SetDebug(true)
	}
	logger := gemalog.Logger()
	logger.Debug().Str("endpoint", cfg.TracesURL()).Msg("registered tracer provider")

	return tp, nil
}

// Tracer returns a tracer carrying the SDK instrumentation scope, from the
// globally registered provider.
func Tracer() oteltrace.Tracer {
	return otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion(instrumentationVersion))
}

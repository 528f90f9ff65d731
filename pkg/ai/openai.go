// Package ai instruments third-party chat-completion clients so their calls
// appear as spans in the platform trace, with token usage attached.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	gemalog "github.com/noah-isme/gema-eval-go/pkg/log"
	gematrace "github.com/noah-isme/gema-eval-go/pkg/trace"
)

var (
	chatDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "chat_completion_duration_seconds",
		Help:      "Duration of instrumented chat completion requests",
	}, []string{"model"})

	chatFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "chat_completion_failures_total",
		Help:      "Number of failed chat completion requests",
	}, []string{"model"})
)

// OpenAIConfig configures the instrumented OpenAI client.
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the OpenAI endpoint, mainly for tests.
	BaseURL string
	Logger  zerolog.Logger
}

// OpenAIClient wraps the OpenAI chat completion API with span emission and
// metrics. It is a drop-in replacement for the call it shadows.
type OpenAIClient struct {
	client *openai.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds an instrumented client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = gemalog.Logger()
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		tracer: otel.Tracer("github.com/noah-isme/gema-eval-go/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// CreateChatCompletion performs the request inside a span carrying the model,
// finish state and token usage.
func (c *OpenAIClient) CreateChatCompletion(parent context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctx, span := c.tracer.Start(parent, "openai.chat_completion", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("gen_ai.request.model", request.Model),
	))
	defer span.End()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	chatDuration.WithLabelValues(request.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		chatFailures.WithLabelValues(request.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return openai.ChatCompletionResponse{}, fmt.Errorf("openai chat completion: %w", err)
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", resp.Model),
		gematrace.AttrUsagePromptTokens.Int64(int64(resp.Usage.PromptTokens)),
		gematrace.AttrUsageCompletionTokens.Int64(int64(resp.Usage.CompletionTokens)),
		gematrace.AttrUsageTotalTokens.Int64(int64(resp.Usage.TotalTokens)),
	)
	if len(resp.Choices) > 0 {
		span.SetAttributes(attribute.String("gen_ai.response.finish_reason", string(resp.Choices[0].FinishReason)))
	}

	c.logger.Debug().
		Str("model", resp.Model).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion traced")

	return resp, nil
}

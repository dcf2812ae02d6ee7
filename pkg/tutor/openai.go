package tutor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	tutorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecoach",
		Subsystem: "tutor",
		Name:      "request_duration_seconds",
		Help:      "Duration of tutor chat completion requests",
	}, []string{"model"})

	tutorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecoach",
		Subsystem: "tutor",
		Name:      "request_failures_total",
		Help:      "Number of failed tutor chat completion requests",
	}, []string{"model"})
)

const systemPrompt = "You are a coding tutor. Never supply a complete solution or fix the student's code for them. " +
	"Guide the student with hints, ask Socratic follow-up questions, and point at the concept they are missing. " +
	"Keep answers short and end with a question that moves the student forward."

// OpenAIConfig defines configuration options for the OpenAI-backed tutor.
// BaseURL is overridable for tests; the API key is supplied per request by
// the calling user, not by process configuration.
type OpenAIConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
	Logger    zerolog.Logger
}

// OpenAIClient implements Client against the OpenAI chat completion API.
type OpenAIClient struct {
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a tutor client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIClient{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/codecoach/codecoach-api/pkg/tutor"),
		logger: logger.With().Str("component", "tutor_client").Logger(),
	}
}

// Complete forwards the conversation history to the provider under the
// caller's API key and returns the assistant reply with token usage.
func (c *OpenAIClient) Complete(parent context.Context, apiKey string, history []Message) (Completion, error) {
	ctx, span := c.tracer.Start(parent, "tutor.complete", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int("history_length", len(history)),
	))
	defer span.End()

	if strings.TrimSpace(apiKey) == "" {
		return Completion{}, ErrUnauthorized
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if c.cfg.BaseURL != "" {
		clientConfig.BaseURL = c.cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: c.cfg.Timeout}
	client := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  messages,
	})
	tutorDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		tutorFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, c.mapError(err)
	}

	if len(resp.Choices) == 0 {
		tutorFailures.WithLabelValues(c.cfg.Model).Inc()
		err := fmt.Errorf("%w: no choices returned", ErrUpstream)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Completion{}, err
	}

	return Completion{
		Reply:            strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Raw: map[string]interface{}{
			"usage": resp.Usage,
			"model": resp.Model,
		},
	}, nil
}

func (c *OpenAIClient) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		c.logger.Error().Int("status", apiErr.HTTPStatusCode).Str("type", apiErr.Type).Msg("tutor provider error")
		return fmt.Errorf("%w: status %d", ErrUpstream, apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		c.logger.Error().Int("status", reqErr.HTTPStatusCode).Msg("tutor provider request error")
		return fmt.Errorf("%w: status %d", ErrUpstream, reqErr.HTTPStatusCode)
	}

	c.logger.Error().Err(err).Msg("tutor request failed")
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

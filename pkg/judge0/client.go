package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecoach",
		Subsystem: "judge",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests to the remote judge",
	}, []string{"endpoint"})

	judgeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecoach",
		Subsystem: "judge",
		Name:      "request_failures_total",
		Help:      "Number of failed requests to the remote judge",
	}, []string{"endpoint"})
)

// Config defines configuration options for the judge client. APIKey and
// APIHost are static process configuration attached to every outbound request.
type Config struct {
	BaseURL string
	APIKey  string
	APIHost string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client is a thin pass-through to the remote judge HTTP API.
type Client struct {
	httpClient *http.Client
	cfg        Config
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// New builds a judge client using the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge base url is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		tracer:     otel.Tracer("github.com/codecoach/codecoach-api/pkg/judge0"),
		logger:     logger.With().Str("component", "judge0_client").Logger(),
	}, nil
}

// Submit dispatches an encoded submission and returns the judge token used
// for polling. Result retrieval is client driven; no server-side polling.
func (c *Client) Submit(parent context.Context, request SubmissionRequest) (string, error) {
	ctx, span := c.tracer.Start(parent, "judge0.submit", trace.WithAttributes(
		attribute.Int("judge.language_id", request.LanguageID),
	))
	defer span.End()

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal submission: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/submissions?base64_encoded=true&wait=false"
	var payload struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, span, "submit", http.MethodPost, endpoint, body, &payload); err != nil {
		return "", err
	}

	if payload.Token == "" {
		err := fmt.Errorf("%w: submission response missing token", ErrUpstream)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("judge.token", payload.Token))
	return payload.Token, nil
}

// Result polls the judge for the submission identified by token. The returned
// stdout/stderr/compile_output remain base64 encoded.
func (c *Client) Result(parent context.Context, token string) (SubmissionResult, error) {
	ctx, span := c.tracer.Start(parent, "judge0.result", trace.WithAttributes(
		attribute.String("judge.token", token),
	))
	defer span.End()

	endpoint := fmt.Sprintf("%s/submissions/%s?base64_encoded=true&fields=token,stdout,stderr,compile_output,message,time,memory,status", c.cfg.BaseURL, url.PathEscape(token))

	var result SubmissionResult
	if err := c.do(ctx, span, "result", http.MethodGet, endpoint, nil, &result); err != nil {
		return SubmissionResult{}, err
	}

	span.SetAttributes(attribute.Int("judge.status_id", result.Status.ID))
	return result, nil
}

// Languages fetches the judge's language metadata, proxied 1:1.
func (c *Client) Languages(parent context.Context) ([]Language, error) {
	ctx, span := c.tracer.Start(parent, "judge0.languages")
	defer span.End()

	var languages []Language
	if err := c.do(ctx, span, "languages", http.MethodGet, c.cfg.BaseURL+"/languages", nil, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

func (c *Client) do(ctx context.Context, span trace.Span, endpoint, method, target string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build judge request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
	}
	if c.cfg.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.cfg.APIHost)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	judgeDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		judgeFailures.WithLabelValues(endpoint).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("judge request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		judgeFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		judgeFailures.WithLabelValues(endpoint).Inc()
		// Upstream bodies are logged for diagnosis but never relayed to callers.
		c.logger.Error().Str("endpoint", endpoint).Int("status", resp.StatusCode).Bytes("body", raw).Msg("judge returned an error response")
		span.SetStatus(codes.Error, fmt.Sprintf("judge status %d", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		judgeFailures.WithLabelValues(endpoint).Inc()
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	return nil
}

package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/models"
)

// ClientConfig configures the assist transport.
type ClientConfig struct {
	// Endpoint is the assist URL. Required; Send fails fast with
	// ErrNotConfigured when empty.
	Endpoint string
	// Headers are extra request headers, e.g. an API key.
	Headers map[string]string
	// Timeout bounds each request. Zero means 60 seconds.
	Timeout time.Duration
}

// Client performs the HTTP exchange with the assist endpoint and classifies
// failures into the NetworkError / ServiceError taxonomy. The caller must
// serialize submissions; the client itself enforces no ordering.
type Client struct {
	endpoint   string
	headers    map[string]string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an assist transport client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "assist-endpoint",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		headers:    cfg.Headers,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("assist-client"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// SetEndpoint sets the endpoint for testing purposes.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// Send posts the assist request and returns the decoded reply. Errors are
// ErrNotConfigured, *NetworkError or *ServiceError; an undecodable success
// body is reported as a *ServiceError rather than crashing the caller.
func (c *Client) Send(ctx context.Context, req models.AssistRequest) (*models.AssistResponse, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "assist_client.send")
	defer span.End()
	span.SetAttributes(
		attribute.Int("components", len(req.Components)),
		attribute.Int("history_length", len(req.History)),
	)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.sendInternal(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &NetworkError{Err: err}
		}
		return nil, err
	}

	return result.(*models.AssistResponse), nil
}

// sendInternal performs the actual HTTP request.
func (c *Client) sendInternal(ctx context.Context, req models.AssistRequest) (*models.AssistResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return nil, &ServiceError{Status: resp.StatusCode, Body: "failed to read response body"}
		}
		return nil, &ServiceError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var assistResp models.AssistResponse
	if err := json.NewDecoder(resp.Body).Decode(&assistResp); err != nil {
		return nil, &ServiceError{Status: resp.StatusCode, Body: "failed to decode response body"}
	}

	return &assistResp, nil
}

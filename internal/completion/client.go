// Package completion fronts the third-party chat-completion API for the
// relay: it injects the fixed system prompt, renders the assist payload into
// a message list and post-processes the model's raw text back into the
// {reply, modifications} shape.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/models"
)

// ClientInterface defines the completion client surface consumed by the
// gateway. Extracted as an interface to enable testing with stubs.
type ClientInterface interface {
	Complete(ctx context.Context, req models.AssistRequest) (*models.AssistResponse, error)
}

// Config configures the upstream completion API.
type Config struct {
	// BaseURL of the completion API, without the /v1/chat/completions path.
	BaseURL string
	// APIKey is sent as a Bearer token when non-empty.
	APIKey string
	// Model names the completion model to invoke.
	Model string
	// Timeout bounds each upstream call. Zero means 60 seconds.
	Timeout time.Duration
}

// Client talks to an OpenAI-style chat-completion endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a completion client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "completion-upstream",
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
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("completion-client"),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// SetBaseURL sets the base URL for testing purposes.
func (c *Client) SetBaseURL(baseURL string) {
	c.cfg.BaseURL = baseURL
}

// chatMessage is one message of the upstream chat-completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the upstream chat-completion request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse is the subset of the upstream response the relay reads.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete invokes the upstream model with the rendered assist payload and
// returns the post-processed reply.
func (c *Client) Complete(ctx context.Context, req models.AssistRequest) (*models.AssistResponse, error) {
	ctx, span := c.tracer.Start(ctx, "completion_client.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int("components", len(req.Components)),
	)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.completeInternal(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to invoke completion upstream: %w", err)
	}

	return result.(*models.AssistResponse), nil
}

// completeInternal performs the actual HTTP request.
func (c *Client) completeInternal(ctx context.Context, req models.AssistRequest) (*models.AssistResponse, error) {
	upstreamReq := chatRequest{
		Model:    c.cfg.Model,
		Messages: buildMessages(req),
	}

	jsonData, err := json.Marshal(upstreamReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return nil, fmt.Errorf("upstream returned status %d (failed to read body: %w)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var upstreamResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&upstreamResp); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}
	if len(upstreamResp.Choices) == 0 {
		return nil, fmt.Errorf("upstream response contains no choices")
	}

	assistResp := Postprocess(upstreamResp.Choices[0].Message.Content)
	c.logger.Debug("completion round finished",
		zap.Int("modifications", len(assistResp.Modifications)))
	return assistResp, nil
}

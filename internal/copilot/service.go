package copilot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/canvas"
	"github.com/pagecraft/canvas-copilot/internal/conversation"
	"github.com/pagecraft/canvas-copilot/internal/merge"
	"github.com/pagecraft/canvas-copilot/internal/metrics"
	"github.com/pagecraft/canvas-copilot/internal/models"
)

// Sender is the transport used by the Service. Extracted as an interface to
// enable testing with stub responses.
type Sender interface {
	Send(ctx context.Context, req models.AssistRequest) (*models.AssistResponse, error)
}

// Service orchestrates one assist round: it guards the single-flight
// invariant, builds the request from the conversation and the live tree,
// performs the exchange, records the outcome in the history and merges any
// returned modifications back into the tree.
type Service struct {
	state   *conversation.State
	root    canvas.Component
	client  Sender
	applier *merge.Applier
	metrics *metrics.AssistMetrics
	logger  *zap.Logger
}

// NewService creates a Service. Metrics may be nil; a nil logger discards
// log output.
func NewService(state *conversation.State, root canvas.Component, client Sender, applier *merge.Applier, m *metrics.AssistMetrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		state:   state,
		root:    root,
		client:  client,
		applier: applier,
		metrics: m,
		logger:  logger,
	}
}

// SubmitResult carries the assistant's reply and the per-component merge
// outcomes of one round.
type SubmitResult struct {
	Reply string
	Merge merge.Results
}

// Submit runs one assist round. While the round is in flight further submits
// are rejected with ErrSubmitInFlight. Transport and service failures are
// appended to the conversation as error messages and never touch the tree;
// per-component merge failures are aggregated in the result without
// interrupting the round.
func (s *Service) Submit(ctx context.Context, message string) (*SubmitResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	refs, err := s.state.BeginSubmit()
	if err != nil {
		return nil, err
	}
	defer s.state.FinishSubmit()

	start := time.Now()
	s.metrics.RecordRoundStarted(ctx)

	req := BuildRequest(message, refs, s.state.History(), s.root)
	s.state.Append(conversation.Message{
		Role:         conversation.RoleUser,
		Content:      message,
		ComponentIDs: refs,
	})

	resp, err := s.client.Send(ctx, req)
	if err != nil {
		s.state.Append(conversation.Message{
			Role:    conversation.RoleAssistant,
			Content: errorNotice(err),
			IsError: true,
		})
		s.metrics.RecordRoundFailed(ctx, errorKind(err), time.Since(start))
		s.logger.Warn("assist round failed", zap.Error(err))
		return nil, err
	}

	s.state.Append(conversation.Message{
		Role:    conversation.RoleAssistant,
		Content: resp.Reply,
	})

	results := s.applier.Apply(resp.Modifications)
	s.metrics.RecordRoundCompleted(ctx, time.Since(start))
	s.metrics.RecordModifications(ctx, results.AppliedCount(), results.FailedCount())
	s.logger.Info("assist round completed",
		zap.Int("modifications_applied", results.AppliedCount()),
		zap.Int("modifications_failed", results.FailedCount()))

	return &SubmitResult{Reply: resp.Reply, Merge: results}, nil
}

// errorNotice renders a transport failure as a user-facing conversation
// message. Network and service failures get distinguishable wording.
func errorNotice(err error) string {
	var svcErr *ServiceError
	var netErr *NetworkError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "The assistant is not configured. Set an assist endpoint and try again."
	case errors.As(err, &netErr):
		return "Could not reach the assistant. Check your connection and try again."
	case errors.As(err, &svcErr):
		return fmt.Sprintf("The assistant returned an error (status %d). Please try again.", svcErr.Status)
	default:
		return "Something went wrong while talking to the assistant."
	}
}

// errorKind classifies a transport failure for metrics attributes.
func errorKind(err error) string {
	var svcErr *ServiceError
	var netErr *NetworkError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &svcErr):
		return "service"
	default:
		return "other"
	}
}

package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/completion"
	"github.com/pagecraft/canvas-copilot/internal/metrics"
	"github.com/pagecraft/canvas-copilot/internal/models"
)

// Handler handles HTTP requests for the relay gateway.
type Handler struct {
	completionClient completion.ClientInterface
	metrics          *metrics.AssistMetrics
	logger           *zap.Logger
}

// NewHandler creates a new gateway handler. Metrics may be nil.
func NewHandler(completionClient completion.ClientInterface, m *metrics.AssistMetrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		completionClient: completionClient,
		metrics:          m,
		logger:           logger,
	}
}

// Assist handles POST /assist: it forwards the assist payload to the
// completion upstream and returns the {reply, modifications} response.
func (h *Handler) Assist(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	h.metrics.RecordRoundStarted(ctx)

	var req models.AssistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordRoundFailed(ctx, "invalid_request", time.Since(start))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid request body",
			Code:  models.ErrCodeInvalidRequest,
		})
		return
	}

	resp, err := h.completionClient.Complete(ctx, req)
	if err != nil {
		h.metrics.RecordRoundFailed(ctx, "upstream", time.Since(start))
		h.logger.Error("completion upstream failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error: "Completion upstream failed",
			Code:  models.ErrCodeUpstreamFailure,
		})
		return
	}

	h.metrics.RecordRoundCompleted(ctx, time.Since(start))
	c.JSON(http.StatusOK, resp)
}

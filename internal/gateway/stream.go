package gateway

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/completion"
	"github.com/pagecraft/canvas-copilot/internal/metrics"
	"github.com/pagecraft/canvas-copilot/internal/models"
)

// AssistStream serves the relay's WebSocket variant of the assist exchange.
// A client connects, sends one assist request as JSON and receives a small
// event sequence: accepted, then reply (carrying the assist response), then
// end — or error.
type AssistStream struct {
	completionClient completion.ClientInterface
	metrics          *metrics.AssistMetrics
	tracer           trace.Tracer
	upgrader         websocket.Upgrader
	logger           *zap.Logger
}

// NewAssistStream creates a new assist stream handler. Outside production any
// origin may connect, since the relay runs next to the editor during
// development; in production cross-origin handshakes are rejected. Metrics
// may be nil.
func NewAssistStream(completionClient completion.ClientInterface, environment string, m *metrics.AssistMetrics, logger *zap.Logger) *AssistStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistStream{
		completionClient: completionClient,
		metrics:          m,
		tracer:           otel.Tracer("assist-stream"),
		logger:           logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:      originChecker(environment),
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// originChecker builds the upgrade origin policy for the given environment.
// Production requires the Origin host to match the request host; browsers
// always send Origin, and non-browser clients that omit it pass.
func originChecker(environment string) func(*http.Request) bool {
	if environment != "production" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// Stream handles GET /ws/assist.
func (s *AssistStream) Stream(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "assist_stream.stream")
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	var req models.AssistRequest
	if err := conn.ReadJSON(&req); err != nil {
		span.RecordError(err)
		s.sendError(conn, "Invalid assist request")
		return
	}
	span.SetAttributes(attribute.Int("components", len(req.Components)))

	start := time.Now()
	s.metrics.RecordRoundStarted(ctx)

	if err := conn.WriteJSON(models.StreamEvent{EventType: models.StreamEventAccepted}); err != nil {
		span.RecordError(err)
		s.metrics.RecordRoundFailed(ctx, "stream_write", time.Since(start))
		return
	}

	resp, err := s.completionClient.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.metrics.RecordRoundFailed(ctx, "upstream", time.Since(start))
		s.logger.Error("completion upstream failed", zap.Error(err))
		s.sendError(conn, "Completion upstream failed")
		return
	}

	replyEvent := models.StreamEvent{
		EventType: models.StreamEventReply,
		Data: map[string]interface{}{
			"reply":         resp.Reply,
			"modifications": resp.Modifications,
		},
	}
	if err := conn.WriteJSON(replyEvent); err != nil {
		span.RecordError(err)
		s.metrics.RecordRoundFailed(ctx, "stream_write", time.Since(start))
		s.logger.Warn("failed to write reply event", zap.Error(err))
		return
	}

	s.metrics.RecordRoundCompleted(ctx, time.Since(start))
	if err := conn.WriteJSON(models.StreamEvent{EventType: models.StreamEventEnd}); err != nil {
		span.RecordError(err)
	}
}

// sendError sends an error event to the WebSocket client.
func (s *AssistStream) sendError(conn *websocket.Conn, message string) {
	event := models.StreamEvent{
		EventType: models.StreamEventError,
		Data:      map[string]interface{}{"error": message},
	}
	if err := conn.WriteJSON(event); err != nil {
		s.logger.Warn("failed to send error event", zap.Error(err))
	}
}

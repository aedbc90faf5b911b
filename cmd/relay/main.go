package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/completion"
	"github.com/pagecraft/canvas-copilot/internal/config"
	"github.com/pagecraft/canvas-copilot/internal/gateway"
	"github.com/pagecraft/canvas-copilot/internal/logging"
	"github.com/pagecraft/canvas-copilot/internal/metrics"
)

func main() {
	cfg, err := config.LoadRelay()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := initTracer(); err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}

	assistMetrics, err := metrics.NewAssistMetrics()
	if err != nil {
		logger.Fatal("failed to initialize metrics", zap.Error(err))
	}

	completionClient := completion.NewClient(completion.Config{
		BaseURL: cfg.UpstreamURL,
		APIKey:  cfg.UpstreamAPIKey,
		Model:   cfg.UpstreamModel,
		Timeout: cfg.UpstreamTimeout,
	}, logger)

	handler := gateway.NewHandler(completionClient, assistMetrics, logger)
	stream := gateway.NewAssistStream(completionClient, cfg.Environment, assistMetrics, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLoggingMiddleware(logger))
	router.Use(gin.Recovery())

	// Health checks live at the root for the WebService standard.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.POST("/assist", handler.Assist)
	router.GET("/ws/assist", stream.Stream)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // upstream completion calls are slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting relay server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return nil
}

// requestLoggingMiddleware provides structured logging for all requests
func requestLoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.Info("request", fields...)
	}
}

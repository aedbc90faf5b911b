// Command copilotctl runs one assist round against a local HTML file: it
// stages the given component ids, submits the message to an assist endpoint
// and writes the patched document back out. Useful for exercising a relay
// without a running editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/pagecraft/canvas-copilot/internal/canvas"
	"github.com/pagecraft/canvas-copilot/internal/conversation"
	"github.com/pagecraft/canvas-copilot/internal/copilot"
	"github.com/pagecraft/canvas-copilot/internal/merge"
)

func main() {
	endpoint := flag.String("endpoint", "", "Assist endpoint URL (required)")
	message := flag.String("message", "", "Instruction for the assistant (required)")
	htmlPath := flag.String("html", "", "Path to the HTML file to patch (required)")
	ids := flag.String("ids", "", "Comma-separated component ids to stage")
	apiKey := flag.String("api-key", "", "Bearer token for the assist endpoint")
	out := flag.String("out", "", "Output path for the patched document (default: stdout)")
	timeout := flag.Duration("timeout", 60*time.Second, "Request timeout")
	flag.Parse()

	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	if err := validateInputs(*endpoint, *message, *htmlPath); err != nil {
		log.Fatalf("Validation error: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	markup, err := os.ReadFile(*htmlPath)
	if err != nil {
		logger.Fatal("failed to read HTML file", zap.Error(err))
	}

	root, err := canvas.Parse(string(markup))
	if err != nil {
		logger.Fatal("failed to parse HTML file", zap.Error(err))
	}

	state := conversation.NewState()
	for _, id := range strings.Split(*ids, ",") {
		state.StageComponent(strings.TrimSpace(id))
	}

	headers := map[string]string{}
	if *apiKey != "" {
		headers["Authorization"] = "Bearer " + *apiKey
	}
	client := copilot.NewClient(copilot.ClientConfig{
		Endpoint: *endpoint,
		Headers:  headers,
		Timeout:  *timeout,
	}, logger)

	applier := merge.NewApplier(root, &logNotifier{logger: logger}, logger)
	service := copilot.NewService(state, root, client, applier, nil, logger)

	result, err := service.Submit(context.Background(), *message)
	if err != nil {
		logger.Fatal("assist round failed", zap.Error(err))
	}

	fmt.Printf("Reply: %s\n", result.Reply)
	for _, outcome := range result.Merge {
		if outcome.Applied {
			fmt.Printf("  %s: applied\n", outcome.ID)
		} else {
			fmt.Printf("  %s: failed (%s)\n", outcome.ID, outcome.Reason)
		}
	}

	patched := root.InnerHTML()
	if *out == "" {
		fmt.Println(patched)
		return
	}
	if err := os.WriteFile(*out, []byte(patched), 0o644); err != nil {
		logger.Fatal("failed to write patched document", zap.Error(err))
	}
	fmt.Printf("Patched document written to %s\n", *out)
}

// validateInputs checks the required flags.
func validateInputs(endpoint, message, htmlPath string) error {
	if endpoint == "" {
		return fmt.Errorf("-endpoint is required")
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("-message is required")
	}
	if htmlPath == "" {
		return fmt.Errorf("-html is required")
	}
	return nil
}

// logNotifier surfaces merge change signals in the CLI output.
type logNotifier struct {
	logger *zap.Logger
}

func (n *logNotifier) ComponentChanged(id string) {
	n.logger.Info("component changed", zap.String("component_id", id))
}

func (n *logNotifier) CanvasRefreshed() {
	n.logger.Info("canvas refreshed")
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/quillscan/quillscan/internal/config"
	"github.com/quillscan/quillscan/internal/ingest"
)

var (
	serviceInstance *ingest.Service
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("IngestDocument", ingestDocument)
}

// main is required by the Go Functions Framework.
func main() {}

// ingestDocument is the Cloud Function entry point for GCS object-finalized
// events.
func ingestDocument(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		cfg := config.Default()
		cfg.Engine = config.GetEnv("RECOGNITION_ENGINE", cfg.Engine)
		serviceInstance, initErr = ingest.NewService(context.Background(), cfg, slog.Default())
	})
	if initErr != nil {
		slog.Error("critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent ingest.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return serviceInstance.Process(ctx, gcsEvent)
}

// Package ingest is the cloud entrypoint: a GCS object-finalized event
// drives one full recognition run, with dedupe and run tracking in the
// catalog and the artifacts archived back to GCS.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/quillscan/quillscan/internal/analyzer"
	"github.com/quillscan/quillscan/internal/catalog"
	"github.com/quillscan/quillscan/internal/config"
	"github.com/quillscan/quillscan/internal/models"
	"github.com/quillscan/quillscan/internal/pdfread"
	"github.com/quillscan/quillscan/internal/processor"
	"github.com/quillscan/quillscan/internal/recognize"
	"github.com/quillscan/quillscan/internal/storage"
	"github.com/quillscan/quillscan/internal/tables"
)

// GCSEvent is the subset of the storage object-finalized payload we use.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// Service processes GCS-delivered documents end to end.
type Service struct {
	cfg              config.App
	profiles         analyzer.ProfileTable
	analyzer         *analyzer.Analyzer
	tables           processor.TableExtractor
	factory          processor.AdapterFactory
	catalog          catalog.Catalog
	archiver         *storage.Archiver
	storageClient    *gcs.Client
	executionsClient *executions.Client
	logger           *slog.Logger
}

// NewService wires the full pipeline from configuration. It is meant to run
// once per function instance.
func NewService(ctx context.Context, cfg config.App, logger *slog.Logger) (*Service, error) {
	if cfg.GCP.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID must be set")
	}
	if cfg.GCP.ArchiveBucket == "" {
		return nil, fmt.Errorf("ARCHIVE_BUCKET must be set")
	}

	storageClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating Storage client: %w", err)
	}
	firestoreClient, err := catalog.NewFirestoreClient(ctx, cfg.GCP.ProjectID)
	if err != nil {
		return nil, err
	}
	runCatalog, err := catalog.NewFirestoreCatalog(firestoreClient, cfg.GCP.Collection)
	if err != nil {
		return nil, err
	}
	executionsClient, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating Workflows Executions client: %w", err)
	}
	archiver, err := storage.NewArchiver(storageClient, cfg.GCP.ArchiveBucket, cfg.GCP.ArchivePrefix, logger)
	if err != nil {
		return nil, err
	}

	var engine recognize.Engine
	switch cfg.Engine {
	case "gemini":
		engine, err = recognize.NewGeminiEngine(ctx, cfg.GCP.ProjectID, cfg.GCP.Region, cfg.GCP.GeminiModel)
		if err != nil {
			return nil, err
		}
	default:
		engine = recognize.NewTesseractEngine()
	}

	profiles, err := cfg.ProfileTable()
	if err != nil {
		return nil, err
	}

	reader := pdfread.FitzReader{}
	s := &Service{
		cfg:              cfg,
		profiles:         profiles,
		analyzer:         analyzer.New(reader, pdfread.Inspector{}, logger),
		tables:           tables.NewGridExtractor(reader),
		factory:          processor.NewAdapterFactory(engine, reader, logger),
		catalog:          runCatalog,
		archiver:         archiver,
		storageClient:    storageClient,
		executionsClient: executionsClient,
		logger:           logger,
	}
	logger.Info("ingest service initialized",
		slog.String("engine", cfg.Engine),
		slog.String("archiveBucket", cfg.GCP.ArchiveBucket))
	return s, nil
}

// Process handles one GCS object-finalized event. Duplicate uploads (same
// content hash) exit cleanly without reprocessing.
func (s *Service) Process(ctx context.Context, e GCSEvent) error {
	logCtx := s.logger.With(slog.String("gcsBucket", e.Bucket), slog.String("gcsObject", e.Name))
	logCtx.Info("processing new GCS object")

	tempDir, err := os.MkdirTemp("", "quillscan-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, filepath.Base(e.Name))
	if err := s.streamGCSObject(ctx, e.Bucket, e.Name, sourcePath); err != nil {
		logCtx.Error("failed to download source PDF", slog.Any("error", err))
		return err
	}

	fileHash, err := hashFile(sourcePath)
	if err != nil {
		logCtx.Error("failed to hash source PDF", slog.Any("error", err))
		return err
	}
	logCtx = logCtx.With(slog.String("fileHash", fileHash))

	if existingID, found, err := s.catalog.FindByHash(ctx, fileHash); err != nil {
		logCtx.Error("failed to check for duplicate", slog.Any("error", err))
		return err
	} else if found {
		logCtx.Info("duplicate file detected, skipping", slog.String("existingRunId", existingID))
		return nil
	}

	runID, err := s.catalog.Begin(ctx, fileHash, e.Name)
	if err != nil {
		logCtx.Error("failed to create run record", slog.Any("error", err))
		return err
	}
	logCtx = logCtx.With(slog.String("runId", runID))

	store, err := storage.NewStore(filepath.Join(tempDir, "out"), s.logger)
	if err != nil {
		return s.fail(ctx, logCtx, runID, "preparing local output", err)
	}
	proc := processor.New(s.analyzer, s.profiles, s.factory, s.tables, store, s.logger)

	dt, metrics, err := proc.Classify(sourcePath)
	if err != nil {
		return s.fail(ctx, logCtx, runID, "classifying document", err)
	}
	if err := s.catalog.MarkProcessing(ctx, runID, dt, metrics.TotalPages); err != nil {
		return s.fail(ctx, logCtx, runID, "recording classification", err)
	}
	logCtx.Info("document classified", slog.String("type", string(dt)), slog.Int("pages", metrics.TotalPages))

	profile, err := proc.ProfileFor(dt)
	if err != nil {
		return s.fail(ctx, logCtx, runID, "resolving profile", err)
	}
	doc, err := proc.Process(ctx, sourcePath, profile)
	if err != nil {
		return s.fail(ctx, logCtx, runID, "processing document", err)
	}

	if err := s.archiver.ArchiveDocument(ctx, doc); err != nil {
		return s.fail(ctx, logCtx, runID, "archiving artifacts", err)
	}
	if err := s.catalog.Complete(ctx, runID, doc); err != nil {
		return s.fail(ctx, logCtx, runID, "recording completion", err)
	}

	if err := s.triggerWorkflow(ctx, runID, doc); err != nil {
		// Downstream workflow is advisory; the run itself succeeded.
		logCtx.Warn("failed to trigger workflow", slog.Any("error", err))
	}

	logCtx.Info("document ingested", slog.String("name", doc.Name), slog.Float64("confidence", doc.Confidence))
	return nil
}

// fail marks the run FAILED in the catalog and returns a single error for
// the function framework to surface.
func (s *Service) fail(ctx context.Context, logCtx *slog.Logger, runID, message string,cause error) error {
	fullError := fmt.Sprintf("%s: %v", message, cause)
	logCtx.Error(message, slog.Any("error", cause))
	if err := s.catalog.Fail(ctx, runID, fullError); err != nil {
		logCtx.Error("failed to update run status to FAILED", slog.Any("updateError", err))
	}
	return fmt.Errorf("%s", fullError)
}

func (s *Service) triggerWorkflow(ctx context.Context, runID string, doc models.Document) error {
	if s.cfg.GCP.WorkflowID == "" {
		return nil
	}
	payload := map[string]any{
		"runId":        runID,
		"documentName": doc.Name,
		"confidence":   doc.Confidence,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s",
			s.cfg.GCP.ProjectID, s.cfg.GCP.WorkflowLocation, s.cfg.GCP.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	if _, err := s.executionsClient.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("creating workflow execution: %w", err)
	}
	return nil
}

func (s *Service) streamGCSObject(ctx context.Context, bucket, object, destPath string) error {
	reader, err := s.storageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("opening gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, reader); err != nil {
		return fmt.Errorf("downloading gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

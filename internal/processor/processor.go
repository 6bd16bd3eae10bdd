// Package processor sequences one document-processing run: recognition,
// table extraction and storage, producing a Document or a single typed
// error. It carries no internal parallelism; callers run independent
// Process calls concurrently when they want throughput.
package processor

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillscan/quillscan/internal/analyzer"
	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
	"github.com/quillscan/quillscan/internal/recognize"
)

// Recognizer is the slice of the recognition adapter the processor drives.
type Recognizer interface {
	ExtractText(ctx context.Context, path string) (recognize.Extraction, error)
}

// AdapterFactory builds the recognition adapter for a profile. Construction
// fails on an invalid profile before the document is touched.
type AdapterFactory func(profile models.ProcessingProfile) (Recognizer, error)

// NewAdapterFactory binds an engine and rasterizer into an AdapterFactory.
func NewAdapterFactory(engine recognize.Engine, raster recognize.Rasterizer, logger *slog.Logger) AdapterFactory {
	return func(profile models.ProcessingProfile) (Recognizer, error) {
		return recognize.NewAdapter(profile, engine, raster, logger)
	}
}

// TableExtractor yields structured tables from a PDF.
type TableExtractor interface {
	ExtractTables(ctx context.Context, path string) ([]models.Table, error)
}

// DocumentStore persists a processed document's artifacts.
type DocumentStore interface {
	Save(doc *models.Document) error
}

type Processor struct {
	analyzer   *analyzer.Analyzer
	profiles   analyzer.ProfileTable
	newAdapter AdapterFactory
	tables     TableExtractor
	store      DocumentStore
	logger     *slog.Logger
}

func New(a *analyzer.Analyzer, profiles analyzer.ProfileTable, factory AdapterFactory, tables TableExtractor, store DocumentStore, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		analyzer:   a,
		profiles:   profiles,
		newAdapter: factory,
		tables:     tables,
		store:      store,
		logger:     logger,
	}
}

// Classify inspects the PDF and returns its document type and the metrics
// that produced it.
func (p *Processor) Classify(path string) (models.DocumentType, models.PDFMetrics, error) {
	return p.analyzer.Classify(path)
}

// ProfileFor returns the processing profile configured for a document type.
func (p *Processor) ProfileFor(dt models.DocumentType) (models.ProcessingProfile, error) {
	return p.profiles.For(dt)
}

// Process runs recognition, table extraction and storage for one document,
// in that order. Any stage failure aborts the run: no Document is returned
// and, when the failure precedes storage, no output directory is allocated.
// The returned Document is named after the allocated output directory,
// which may differ from the source filename's stem when that name was
// already taken.
func (p *Processor) Process(ctx context.Context, path string, profile models.ProcessingProfile) (models.Document, error) {
	start := time.Now()
	logCtx := p.logger.With(slog.String("path", path), slog.String("engine", string(profile.Engine)))
	logCtx.Info("processing document", slog.Int("dpi", profile.DPI))

	adapter, err := p.newAdapter(profile)
	if err != nil {
		return models.Document{}, err
	}

	ext, err := adapter.ExtractText(ctx, path)
	if err != nil {
		logCtx.Error("recognition failed", slog.Any("error", err))
		return models.Document{}, err
	}

	tbls, err := p.tables.ExtractTables(ctx, path)
	if err != nil {
		logCtx.Error("table extraction failed", slog.Any("error", err))
		return models.Document{}, errs.E(errs.Processing, "processor.Process", err)
	}

	doc := models.NewDocument(stem(path), path)
	doc.Text = ext.Text
	doc.Confidence = ext.Confidence
	doc.Tables = tbls
	doc.ProcessingTime = time.Since(start).Seconds()

	if err := p.store.Save(&doc); err != nil {
		logCtx.Error("storage failed", slog.Any("error", err))
		return models.Document{}, err
	}

	logCtx.Info("document processed",
		slog.String("name", doc.Name),
		slog.Int("pages", ext.Pages),
		slog.Int("tables", len(doc.Tables)),
		slog.Float64("confidence", doc.Confidence),
		slog.Float64("seconds", doc.ProcessingTime))
	return doc, nil
}

// ProcessAuto classifies the document first and processes it with the
// profile attached to its type.
func (p *Processor) ProcessAuto(ctx context.Context, path string) (models.Document, models.DocumentType, error) {
	dt, _, err := p.Classify(path)
	if err != nil {
		return models.Document{}, "", err
	}
	profile, err := p.ProfileFor(dt)
	if err != nil {
		return models.Document{}, dt, err
	}
	doc, err := p.Process(ctx, path, profile)
	if err != nil {
		return models.Document{}, dt, err
	}
	return doc, dt, nil
}

// stem is the source filename without directory or extension; it seeds the
// output directory name.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Command quillscan runs the document-recognition pipeline from the shell:
// classify PDFs, process them into numbered output directories, or list
// what has been processed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

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

const usage = `usage: quillscan [flags] <command> [args]

commands:
  classify <pdf>...   classify documents and print type and metrics
  process  <pdf>...   process documents into the output directory
  list                list processed documents
  runs                list recent processing runs from the catalog

flags:
`

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML configuration file")
		outputDir   = flag.String("out", "", "output directory (overrides configuration)")
		engineName  = flag.String("engine", "", "recognition engine: tesseract or gemini (overrides configuration)")
		forcedType  = flag.String("type", "", "skip classification and use this document type's profile")
		concurrency = flag.Int("concurrency", 0, "parallel documents for process (overrides configuration)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}

	ctx := context.Background()
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		fatal(logger, err)
	}

	command, args := flag.Arg(0), flag.Args()[1:]
	switch command {
	case "classify":
		err = app.classify(args)
	case "process":
		err = app.process(ctx, args, *forcedType)
	case "list":
		err = app.list()
	case "runs":
		err = app.runs(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(logger, err)
	}
}

func fatal(logger *slog.Logger, err error) {
	logger.Error("quillscan failed", slog.Any("error", err))
	os.Exit(1)
}

type app struct {
	cfg    config.App
	proc   *processor.Processor
	store  *storage.Store
	logger *slog.Logger
}

func newApp(ctx context.Context, cfg config.App, logger *slog.Logger) (*app, error) {
	var engine recognize.Engine
	switch cfg.Engine {
	case "gemini":
		g, err := recognize.NewGeminiEngine(ctx, cfg.GCP.ProjectID, cfg.GCP.Region, cfg.GCP.GeminiModel)
		if err != nil {
			return nil, err
		}
		engine = g
	default:
		engine = recognize.NewTesseractEngine()
	}

	profiles, err := cfg.ProfileTable()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(cfg.OutputDir, logger)
	if err != nil {
		return nil, err
	}

	reader := pdfread.FitzReader{}
	proc := processor.New(
		analyzer.New(reader, pdfread.Inspector{}, logger),
		profiles,
		processor.NewAdapterFactory(engine, reader, logger),
		tables.NewGridExtractor(reader),
		store,
		logger,
	)
	return &app{cfg: cfg, proc: proc, store: store, logger: logger}, nil
}

func (a *app) classify(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("classify needs at least one PDF path")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, path := range paths {
		dt, metrics, err := a.proc.Classify(path)
		if err != nil {
			return err
		}
		if err := enc.Encode(struct {
			Path    string              `json:"path"`
			Type    models.DocumentType `json:"type"`
			Metrics models.PDFMetrics   `json:"metrics"`
		}{path, dt, metrics}); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) process(ctx context.Context, paths []string, forcedType string) error {
	if len(paths) == 0 {
		return fmt.Errorf("process needs at least one PDF path")
	}

	var forcedProfile *models.ProcessingProfile
	if forcedType != "" {
		profile, err := a.proc.ProfileFor(models.DocumentType(forcedType))
		if err != nil {
			return err
		}
		forcedProfile = &profile
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for _, path := range paths {
		g.Go(func() error {
			var (
				doc models.Document
				err error
			)
			if forcedProfile != nil {
				doc, err = a.proc.Process(ctx, path, *forcedProfile)
			} else {
				doc, _, err = a.proc.ProcessAuto(ctx, path)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Printf("%s -> %s (confidence %.1f, %d tables)\n", path, doc.OutputDir, doc.Confidence, len(doc.Tables))
			return nil
		})
	}
	return g.Wait()
}

func (a *app) runs(ctx context.Context) error {
	if a.cfg.GCP.ProjectID == "" {
		return fmt.Errorf("runs needs PROJECT_ID (no run catalog configured)")
	}
	client, err := catalog.NewFirestoreClient(ctx, a.cfg.GCP.ProjectID)
	if err != nil {
		return err
	}
	defer client.Close()
	runs, err := catalog.NewFirestoreCatalog(client, a.cfg.GCP.Collection)
	if err != nil {
		return err
	}
	records, err := runs.List(ctx, 50)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%-12s %-12s %-30s %3d pages  confidence %.1f  %s\n",
			rec.Status, rec.DocumentType, rec.OriginalFilename, rec.PageCount,
			rec.Confidence, rec.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) list() error {
	docs, err := a.store.List(0, 0)
	if err != nil {
		return err
	}
	for _, meta := range docs {
		fmt.Printf("%-30s %8d chars %3d tables  confidence %.1f  %s\n",
			meta.Name, meta.TextLength, meta.TableCount, meta.Confidence,
			meta.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

package recognize

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
	"github.com/quillscan/quillscan/internal/preprocess"
)

// preprocessor is what an adapter needs from the preprocessing pipeline.
type preprocessor interface {
	Apply(img image.Image) *image.Gray
}

type adapter struct {
	engine   Engine
	raster   Rasterizer
	profile  models.ProcessingProfile
	pipeline preprocessor // nil in direct mode
	logger   *slog.Logger
}

// NewAdapter builds the recognition adapter selected by the profile's
// engine mode. The profile is validated up front so a bad selector or DPI
// fails before any document is touched.
func NewAdapter(profile models.ProcessingProfile, engine Engine, raster Rasterizer, logger *slog.Logger) (Adapter, error) {
	const op = "recognize.NewAdapter"
	if err := profile.Validate(); err != nil {
		return nil, errs.E(errs.Configuration, op, err)
	}
	if engine == nil || raster == nil {
		return nil, errs.Ef(errs.Configuration, op, "engine and rasterizer are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &adapter{engine: engine, raster: raster, profile: profile, logger: logger}
	switch profile.Engine {
	case models.EngineDirect:
		// No pipeline: pages go to the engine as rendered.
	case models.EnginePreprocessed:
		a.pipeline = preprocess.New(preprocess.Options{
			Deskew:          profile.Deskew,
			Denoise:         profile.Denoise,
			EnhanceContrast: profile.EnhanceContrast,
		}, logger)
	default:
		return nil, errs.Ef(errs.Configuration, op, "unknown engine mode %q", profile.Engine)
	}
	return a, nil
}

// ExtractText recognizes every page of the document at path. It is
// all-or-nothing: a failure on any page abandons the document. Page texts
// are joined with a blank line; document confidence is the mean of page
// confidences the engine actually reported.
func (a *adapter) ExtractText(ctx context.Context, path string) (Extraction, error) {
	const op = "recognize.ExtractText"

	pages, err := a.raster.Rasterize(path, a.profile.DPI)
	if err != nil {
		return Extraction{}, errs.E(errs.Processing, op, fmt.Errorf("rasterize %s at %d dpi: %w", path, a.profile.DPI, err))
	}
	if len(pages) == 0 {
		return Extraction{}, errs.Ef(errs.Processing, op, "%s rendered zero pages", path)
	}

	texts := make([]string, 0, len(pages))
	var confSum float64
	confPages := 0
	for i, img := range pages {
		if a.pipeline != nil {
			img = a.pipeline.Apply(img)
		}
		res, err := a.engine.Recognize(ctx, img, a.profile.Language)
		if err != nil {
			return Extraction{}, errs.E(errs.Processing, op, fmt.Errorf("%s page %d: %w", path, i+1, err))
		}
		texts = append(texts, res.Text)
		if res.Confidence > 0 {
			confSum += res.Confidence
			confPages++
		}
		a.logger.Debug("page recognized",
			slog.String("path", path),
			slog.Int("page", i+1),
			slog.Float64("confidence", res.Confidence))
	}

	var conf float64
	if confPages > 0 {
		conf = confSum / float64(confPages)
	}
	return Extraction{
		Text:       strings.Join(texts, "\n\n"),
		Confidence: conf,
		Pages:      len(pages),
	}, nil
}

func (a *adapter) EngineInfo() EngineInfo {
	return EngineInfo{
		Name:          a.engine.Name(),
		Version:       a.engine.Version(),
		Mode:          a.profile.Engine,
		DPI:           a.profile.DPI,
		Language:      a.profile.Language,
		Preprocessing: a.pipeline != nil,
	}
}

func (a *adapter) SupportedLanguages() []string {
	return a.engine.Languages()
}

// Package recognize turns PDFs into text: it rasterizes pages, optionally
// conditions them through the preprocessing pipeline, and drives an external
// recognition engine page by page.
package recognize

import (
	"context"
	"image"

	"github.com/quillscan/quillscan/internal/models"
)

// PageResult is the engine output for one page image. Confidence is on a
// 0-100 scale; its exact meaning is engine-specific and zero means the
// engine reported none.
type PageResult struct {
	Text       string
	Confidence float64
}

// Engine recognizes text on a single raster image.
type Engine interface {
	Name() string
	Version() string
	Languages() []string
	Recognize(ctx context.Context, img image.Image, lang string) (PageResult, error)
}

// Rasterizer renders a PDF to one image per page, in page order.
type Rasterizer interface {
	Rasterize(path string, dpi int) ([]image.Image, error)
}

// Extraction is the document-level recognition result.
type Extraction struct {
	Text       string
	Confidence float64
	Pages      int
}

// EngineInfo describes an adapter for diagnostics only; nothing branches
// on it.
type EngineInfo struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Mode          models.EngineMode `json:"mode"`
	DPI           int               `json:"dpi"`
	Language      string            `json:"language"`
	Preprocessing bool              `json:"preprocessing"`
}

// Adapter is the recognition strategy contract: one call per document.
type Adapter interface {
	ExtractText(ctx context.Context, path string) (Extraction, error)
	EngineInfo() EngineInfo
	SupportedLanguages() []string
}

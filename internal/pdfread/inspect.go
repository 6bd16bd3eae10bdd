// Package pdfread wraps the PDF libraries behind the narrow read contracts
// the pipeline consumes: structural inspection (pdfcpu) and page text /
// rasterization (MuPDF via go-fitz).
package pdfread

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/quillscan/quillscan/internal/models"
)

// Inspector reads PDF structure through pdfcpu.
type Inspector struct{}

// Inspect validates the file (relaxed mode, real-world PDFs are sloppy) and
// reports page count, per-page embedded image counts and font presence.
func (Inspector) Inspect(path string) (models.PDFStructure, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.PDFStructure{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return models.PDFStructure{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return models.PDFStructure{}, fmt.Errorf("validate %s: %w", path, err)
	}
	// Optimization groups font and image objects per page.
	if err := pdfcpu.OptimizeXRefTable(ctx); err != nil {
		return models.PDFStructure{}, fmt.Errorf("analyze resources of %s: %w", path, err)
	}

	s := models.PDFStructure{
		PageCount:     ctx.PageCount,
		ImagesPerPage: make([]int, ctx.PageCount),
	}
	for i, imgs := range ctx.Optimize.PageImages {
		if i < len(s.ImagesPerPage) {
			s.ImagesPerPage[i] = len(imgs)
		}
	}
	for _, fonts := range ctx.Optimize.PageFonts {
		if len(fonts) > 0 {
			s.HasFonts = true
			break
		}
	}
	return s, nil
}

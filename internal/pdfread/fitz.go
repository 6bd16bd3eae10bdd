package pdfread

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzReader extracts page text and rasterizes pages through MuPDF. The
// zero value is ready to use; documents are opened per call so one reader
// can serve concurrent runs.
type FitzReader struct{}

// PageTexts returns the extractable text of every page, in page order.
// Pages without a text layer yield empty strings.
func (FitzReader) PageTexts(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	texts := make([]string, doc.NumPage())
	for i := range texts {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("extract text of %s page %d: %w", path, i+1, err)
		}
		texts[i] = text
	}
	return texts, nil
}

// Rasterize renders one image per page at the requested density.
func (FitzReader) Rasterize(path string, dpi int) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	pages := make([]image.Image, doc.NumPage())
	for i := range pages {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rasterize %s page %d at %d dpi: %w", path, i+1, dpi, err)
		}
		pages[i] = img
	}
	return pages, nil
}

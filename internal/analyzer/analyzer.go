// Package analyzer inspects a PDF's structure and decides what kind of
// document it is and how it should be processed.
package analyzer

import (
	"log/slog"
	"strings"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
	"github.com/quillscan/quillscan/internal/tables"
)

// TextReader supplies per-page extractable text.
type TextReader interface {
	PageTexts(path string) ([]string, error)
}

// StructureReader supplies page, image and font statistics.
type StructureReader interface {
	Inspect(path string) (models.PDFStructure, error)
}

// Analyzer computes PDFMetrics and classifies documents.
type Analyzer struct {
	texts     TextReader
	structure StructureReader
	logger    *slog.Logger
}

// New builds an analyzer over the two readers. A nil logger falls back to
// slog.Default.
func New(texts TextReader, structure StructureReader, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{texts: texts, structure: structure, logger: logger}
}

// ExtractMetrics walks the document through both readers and returns fully
// populated metrics. Any read failure is a document error; partial metrics
// are never returned.
func (a *Analyzer) ExtractMetrics(path string) (models.PDFMetrics, error) {
	texts, err := a.texts.PageTexts(path)
	if err != nil {
		return models.PDFMetrics{}, errs.E(errs.Document, "extract metrics", err)
	}
	st, err := a.structure.Inspect(path)
	if err != nil {
		return models.PDFMetrics{}, errs.E(errs.Document, "extract metrics", err)
	}

	m := models.PDFMetrics{
		TotalPages:  st.PageCount,
		TotalImages: st.TotalImages(),
		HasFonts:    st.HasFonts,
	}
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			m.TextExtractablePages++
			m.TotalTextLength += len(text)
		}
		m.TotalTables += len(tables.Detect(text))
	}
	m.ComputeRatios()
	return m, nil
}

// Classify extracts metrics and maps them to a document type.
func (a *Analyzer) Classify(path string) (models.DocumentType, models.PDFMetrics, error) {
	m, err := a.ExtractMetrics(path)
	if err != nil {
		return "", models.PDFMetrics{}, err
	}
	t := ClassifyMetrics(m)
	a.logger.Debug("classified document",
		"path", path,
		"type", t,
		"pages", m.TotalPages,
		"imageRatio", m.ImageToPageRatio,
		"tableRatio", m.TableToPageRatio,
	)
	return t, m, nil
}

// ClassifyMetrics maps metrics to a document type. The rules form a strict
// decision list evaluated top to bottom; the first match wins and MIXED
// catches everything else.
func ClassifyMetrics(m models.PDFMetrics) models.DocumentType {
	// Scanned: no embedded fonts, hardly any extractable text, images on
	// most pages.
	if !m.HasFonts &&
		float64(m.TextExtractablePages) < 0.3*float64(m.TotalPages) &&
		m.ImageToPageRatio > 0.5 {
		return models.TypeScanned
	}
	if m.TableToPageRatio > 0.8 {
		return models.TypeTableHeavy
	}
	if m.ImageToPageRatio > 1.5 {
		return models.TypeImageHeavy
	}
	// Native text: fonts present and a healthy text layer on most pages.
	if m.HasFonts &&
		float64(m.TextExtractablePages) > 0.8*float64(m.TotalPages) &&
		m.AvgTextPerPage > 100 {
		return models.TypeNativeText
	}
	return models.TypeMixed
}

package models

// PDFMetrics holds the structural statistics extracted from a PDF. It is
// computed once by the analyzer and never mutated afterwards.
type PDFMetrics struct {
	TotalPages           int  `json:"totalPages"`
	TextExtractablePages int  `json:"textExtractablePages"`
	TotalTextLength      int  `json:"totalTextLength"`
	TotalImages          int  `json:"totalImages"`
	TotalTables          int  `json:"totalTables"`
	HasFonts             bool `json:"hasFonts"`

	AvgTextPerPage   float64 `json:"avgTextPerPage"`
	ImageToPageRatio float64 `json:"imageToPageRatio"`
	TableToPageRatio float64 `json:"tableToPageRatio"`
}

// ComputeRatios fills in the derived per-page ratios. A document with zero
// pages yields zero for all three ratios.
func (m *PDFMetrics) ComputeRatios() {
	if m.TotalPages <= 0 {
		m.AvgTextPerPage = 0
		m.ImageToPageRatio = 0
		m.TableToPageRatio = 0
		return
	}
	pages := float64(m.TotalPages)
	m.AvgTextPerPage = float64(m.TotalTextLength) / pages
	m.ImageToPageRatio = float64(m.TotalImages) / pages
	m.TableToPageRatio = float64(m.TotalTables) / pages
}

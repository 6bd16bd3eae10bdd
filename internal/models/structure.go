package models

// PDFStructure carries the raw image/font statistics read from a PDF's
// object tree, before any ratios are derived.
type PDFStructure struct {
	PageCount     int
	ImagesPerPage []int
	HasFonts      bool
}

// TotalImages sums the per-page embedded image counts.
func (s PDFStructure) TotalImages() int {
	total := 0
	for _, n := range s.ImagesPerPage {
		total += n
	}
	return total
}

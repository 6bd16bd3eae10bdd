// Package tables extracts structured tables from PDFs. The Extractor
// contract is the stable part; the shipped implementation is a deliberately
// small whitespace-grid heuristic over the page text layer.
package tables

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/quillscan/quillscan/internal/models"
)

// Info describes an extractor for diagnostics.
type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

// Extractor yields the tables of a document.
type Extractor interface {
	ExtractTables(ctx context.Context, path string) ([]models.Table, error)
	Info() Info
}

// PageTextReader supplies per-page extractable text.
type PageTextReader interface {
	PageTexts(path string) ([]string, error)
}

// GridExtractor detects tables as blocks of consecutive lines whose cells
// are separated by tabs or runs of two or more spaces.
type GridExtractor struct {
	reader PageTextReader
}

// NewGridExtractor builds a text-grid table extractor over the given reader.
func NewGridExtractor(reader PageTextReader) *GridExtractor {
	return &GridExtractor{reader: reader}
}

// ExtractTables scans every page and returns detected grids in page order.
func (g *GridExtractor) ExtractTables(ctx context.Context, path string) ([]models.Table, error) {
	texts, err := g.reader.PageTexts(path)
	if err != nil {
		return nil, fmt.Errorf("extract tables of %s: %w", path, err)
	}

	var out []models.Table
	for page, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, t := range Detect(text) {
			t.Page = page + 1
			out = append(out, t)
		}
	}
	return out, nil
}

// Info implements Extractor.
func (g *GridExtractor) Info() Info {
	return Info{
		Name:         "text-grid",
		Version:      "1.0.0",
		Capabilities: []string{"whitespace_grid_detection"},
	}
}

var cellSeparator = regexp.MustCompile(`\t+| {2,}`)

// minTableRows is the smallest run of aligned lines that counts as a table.
const minTableRows = 2

// Detect finds whitespace-aligned tables in one page's text.
func Detect(text string) []models.Table {
	var (
		out   []models.Table
		block [][]string
	)
	flush := func() {
		if len(block) >= minTableRows {
			out = append(out, buildTable(block))
		}
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := splitCells(line)
		if len(cells) >= 2 {
			block = append(block, cells)
			continue
		}
		flush()
	}
	flush()
	return out
}

func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := cellSeparator.Split(line, -1)
	cells := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

// buildTable normalizes a block to a rectangular grid and scores it by how
// many rows already matched the widest row.
func buildTable(block [][]string) models.Table {
	width := 0
	for _, row := range block {
		if len(row) > width {
			width = len(row)
		}
	}
	aligned := 0
	rows := make([][]string, len(block))
	for i, row := range block {
		if len(row) == width {
			aligned++
		}
		padded := make([]string, width)
		copy(padded, row)
		rows[i] = padded
	}
	return models.Table{
		Rows:       rows,
		Confidence: float64(aligned) / float64(len(block)),
	}
}

package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

func TestComputeRatiosZeroPages(t *testing.T) {
	m := models.PDFMetrics{TotalTextLength: 500, TotalImages: 3, TotalTables: 2}
	m.ComputeRatios()
	if m.AvgTextPerPage != 0 || m.ImageToPageRatio != 0 || m.TableToPageRatio != 0 {
		t.Errorf("ratios for zero-page document = %v/%v/%v, want all zero",
			m.AvgTextPerPage, m.ImageToPageRatio, m.TableToPageRatio)
	}
}

func metricsOf(pages, textPages, textLen, images, tableCount int, fonts bool) models.PDFMetrics {
	m := models.PDFMetrics{
		TotalPages:           pages,
		TextExtractablePages: textPages,
		TotalTextLength:      textLen,
		TotalImages:          images,
		TotalTables:          tableCount,
		HasFonts:             fonts,
	}
	m.ComputeRatios()
	return m
}

func TestClassifyMetrics(t *testing.T) {
	tests := []struct {
		name string
		m    models.PDFMetrics
		want models.DocumentType
	}{
		{
			// 8 images over 10 pages, one text page, no fonts.
			name: "scanned",
			m:    metricsOf(10, 1, 50, 8, 0, false),
			want: models.TypeScanned,
		},
		{
			// 9 of 10 pages with text, 500 chars/page average, fonts present.
			name: "native text",
			m:    metricsOf(10, 9, 5000, 0, 0, true),
			want: models.TypeNativeText,
		},
		{
			name: "table heavy wins over native text",
			m:    metricsOf(10, 10, 5000, 0, 9, true),
			want: models.TypeTableHeavy,
		},
		{
			name: "image heavy",
			m:    metricsOf(10, 10, 5000, 16, 0, true),
			want: models.TypeImageHeavy,
		},
		{
			name: "scanned outranks image heavy",
			m:    metricsOf(10, 0, 0, 16, 0, false),
			want: models.TypeScanned,
		},
		{
			name: "sparse text defaults to mixed",
			m:    metricsOf(10, 5, 300, 2, 1, true),
			want: models.TypeMixed,
		},
		{
			name: "fontless but text-rich is mixed, not scanned",
			m:    metricsOf(10, 9, 5000, 8, 0, false),
			want: models.TypeMixed,
		},
		{
			name: "empty document is mixed",
			m:    metricsOf(0, 0, 0, 0, 0, false),
			want: models.TypeMixed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMetrics(tt.m); got != tt.want {
				t.Errorf("ClassifyMetrics() = %v, want %v", got, tt.want)
			}
			// Determinism: identical metrics always classify identically.
			if again := ClassifyMetrics(tt.m); again != ClassifyMetrics(tt.m) {
				t.Errorf("classification is not deterministic: %v vs %v", again, ClassifyMetrics(tt.m))
			}
		})
	}
}

type fakeTexts struct {
	texts []string
	err   error
}

func (f fakeTexts) PageTexts(string) ([]string, error) { return f.texts, f.err }

type fakeStructure struct {
	st  models.PDFStructure
	err error
}

func (f fakeStructure) Inspect(string) (models.PDFStructure, error) { return f.st, f.err }

func TestExtractMetrics(t *testing.T) {
	texts := fakeTexts{texts: []string{
		strings.Repeat("lorem ipsum ", 20),
		"",
		"Name\tQty\nBolt\t4",
	}}
	st := fakeStructure{st: models.PDFStructure{
		PageCount:     3,
		ImagesPerPage: []int{2, 0, 1},
		HasFonts:      true,
	}}

	m, err := New(texts, st, nil).ExtractMetrics("doc.pdf")
	if err != nil {
		t.Fatalf("ExtractMetrics: %v", err)
	}
	if m.TotalPages != 3 || m.TotalImages != 3 || !m.HasFonts {
		t.Errorf("structure fields wrong: %+v", m)
	}
	if m.TextExtractablePages != 2 {
		t.Errorf("TextExtractablePages = %d, want 2", m.TextExtractablePages)
	}
	if m.TotalTables != 1 {
		t.Errorf("TotalTables = %d, want 1", m.TotalTables)
	}
	if m.ImageToPageRatio != 1 {
		t.Errorf("ImageToPageRatio = %v, want 1", m.ImageToPageRatio)
	}
}

func TestExtractMetricsFailsAsDocumentError(t *testing.T) {
	boom := errors.New("not a pdf")
	tests := []struct {
		name      string
		texts     fakeTexts
		structure fakeStructure
	}{
		{"text reader fails", fakeTexts{err: boom}, fakeStructure{}},
		{"structure reader fails", fakeTexts{texts: []string{"x"}}, fakeStructure{err: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.texts, tt.structure, nil).ExtractMetrics("doc.pdf")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errs.IsKind(err, errs.Document) {
				t.Errorf("error kind = %v, want Document: %v", errs.KindOf(err), err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("cause not preserved: %v", err)
			}
		})
	}
}

func TestProfileTable(t *testing.T) {
	profiles := DefaultProfiles()

	t.Run("every document type has a valid profile", func(t *testing.T) {
		for _, dt := range models.DocumentTypes {
			p, err := profiles.For(dt)
			if err != nil {
				t.Fatalf("For(%v): %v", dt, err)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("profile for %v invalid: %v", dt, err)
			}
		}
	})

	t.Run("native text maps to the direct engine", func(t *testing.T) {
		p, _ := profiles.For(models.TypeNativeText)
		if p.Engine != models.EngineDirect || p.DPI != 150 {
			t.Errorf("native text profile = %+v", p)
		}
		if p.Deskew || p.Denoise || p.EnhanceContrast {
			t.Errorf("native text profile enables corrections: %+v", p)
		}
	})

	t.Run("scanned maps to full preprocessing", func(t *testing.T) {
		p, _ := profiles.For(models.TypeScanned)
		if p.Engine != models.EnginePreprocessed || p.DPI != 300 {
			t.Errorf("scanned profile = %+v", p)
		}
		if !p.Deskew || !p.Denoise || !p.EnhanceContrast {
			t.Errorf("scanned profile misses corrections: %+v", p)
		}
	})

	t.Run("unknown type is a configuration error", func(t *testing.T) {
		_, err := profiles.For(models.DocumentType("pamphlet"))
		if !errs.IsKind(err, errs.Configuration) {
			t.Errorf("error kind = %v, want Configuration", errs.KindOf(err))
		}
	})

	t.Run("merge overrides only named types", func(t *testing.T) {
		merged := profiles.Merge(ProfileTable{
			models.TypeMixed: {Engine: models.EngineDirect, DPI: 96, Language: "deu"},
		})
		p, err := merged.For(models.TypeMixed)
		if err != nil {
			t.Fatalf("For(mixed): %v", err)
		}
		if p.DPI != 96 || p.Language != "deu" {
			t.Errorf("override not applied: %+v", p)
		}
		if q, _ := merged.For(models.TypeScanned); q.DPI != 300 {
			t.Errorf("unrelated profile changed: %+v", q)
		}
	})

	t.Run("invalid override surfaces on lookup", func(t *testing.T) {
		merged := profiles.Merge(ProfileTable{
			models.TypeMixed: {Engine: "turbo", DPI: 250},
		})
		if _, err := merged.For(models.TypeMixed); !errs.IsKind(err, errs.Configuration) {
			t.Errorf("invalid engine selector not rejected: %v", err)
		}
	})
}

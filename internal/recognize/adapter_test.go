package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

type fakeEngine struct {
	results []PageResult
	err     error
	failOn  int // 1-based page to fail on; 0 means never

	calls []image.Image
	langs []string
}

func (e *fakeEngine) Name() string        { return "fake" }
func (e *fakeEngine) Version() string     { return "0.0.1" }
func (e *fakeEngine) Languages() []string { return []string{"eng", "deu"} }

func (e *fakeEngine) Recognize(_ context.Context, img image.Image, lang string) (PageResult, error) {
	e.calls = append(e.calls, img)
	e.langs = append(e.langs, lang)
	if e.failOn != 0 && len(e.calls) == e.failOn {
		return PageResult{}, e.err
	}
	return e.results[len(e.calls)-1], nil
}

type fakeRasterizer struct {
	pages []image.Image
	err   error

	path string
	dpi  int
}

func (r *fakeRasterizer) Rasterize(path string, dpi int) ([]image.Image, error) {
	r.path, r.dpi = path, dpi
	return r.pages, r.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func textPage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < w-10; x++ {
		img.Set(x, h/2, color.Black)
	}
	return img
}

func directProfile() models.ProcessingProfile {
	return models.ProcessingProfile{Engine: models.EngineDirect, DPI: 150, Language: "eng"}
}

func TestNewAdapterRejectsBadConfig(t *testing.T) {
	engine := &fakeEngine{}
	raster := &fakeRasterizer{}

	tests := []struct {
		name    string
		profile models.ProcessingProfile
		engine  Engine
		raster  Rasterizer
	}{
		{"unknown engine mode", models.ProcessingProfile{Engine: "psychic", DPI: 150}, engine, raster},
		{"dpi below minimum", models.ProcessingProfile{Engine: models.EngineDirect, DPI: 30}, engine, raster},
		{"nil engine", directProfile(), nil, raster},
		{"nil rasterizer", directProfile(), engine, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAdapter(tc.profile, tc.engine, tc.raster, testLogger())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errs.IsKind(err, errs.Configuration) {
				t.Errorf("expected a configuration error, got %v", err)
			}
		})
	}
}

func TestExtractTextJoinsPages(t *testing.T) {
	engine := &fakeEngine{results: []PageResult{
		{Text: "page one", Confidence: 90},
		{Text: "page two", Confidence: 70},
	}}
	raster := &fakeRasterizer{pages: []image.Image{textPage(60, 40), textPage(60, 40)}}

	a, err := NewAdapter(directProfile(), engine, raster, testLogger())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	got, err := a.ExtractText(context.Background(), "invoice.pdf")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if want := "page one\n\npage two"; got.Text != want {
		t.Errorf("text mismatch: got %q, want %q", got.Text, want)
	}
	if got.Pages != 2 {
		t.Errorf("pages = %d, want 2", got.Pages)
	}
	if got.Confidence != 80 {
		t.Errorf("confidence = %v, want 80", got.Confidence)
	}
	if raster.path != "invoice.pdf" || raster.dpi != 150 {
		t.Errorf("rasterizer called with (%q, %d), want (invoice.pdf, 150)", raster.path, raster.dpi)
	}
	if len(engine.langs) != 2 || engine.langs[0] != "eng" {
		t.Errorf("engine language = %v, want eng for every page", engine.langs)
	}
}

func TestExtractTextConfidenceSkipsUnreported(t *testing.T) {
	engine := &fakeEngine{results: []PageResult{
		{Text: "a", Confidence: 60},
		{Text: "b"}, // engine reported nothing for this page
	}}
	raster := &fakeRasterizer{pages: []image.Image{textPage(60, 40), textPage(60, 40)}}

	a, err := NewAdapter(directProfile(), engine, raster, testLogger())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	got, err := a.ExtractText(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got.Confidence != 60 {
		t.Errorf("confidence = %v, want 60 (unreported pages excluded)", got.Confidence)
	}
}

func TestExtractTextDirectPassesOriginalImage(t *testing.T) {
	page := textPage(60, 40)
	engine := &fakeEngine{results: []PageResult{{Text: "x"}}}
	raster := &fakeRasterizer{pages: []image.Image{page}}

	a, err := NewAdapter(directProfile(), engine, raster, testLogger())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if _, err := a.ExtractText(context.Background(), "doc.pdf"); err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if engine.calls[0] != page {
		t.Error("direct adapter must hand the rendered image to the engine untouched")
	}
}

func TestExtractTextPreprocessedBinarizes(t *testing.T) {
	engine := &fakeEngine{results: []PageResult{{Text: "x"}}}
	raster := &fakeRasterizer{pages: []image.Image{textPage(80, 60)}}

	profile := models.ProcessingProfile{
		Engine:          models.EnginePreprocessed,
		DPI:             300,
		Deskew:          true,
		Denoise:         true,
		EnhanceContrast: true,
		Language:        "eng",
	}
	a, err := NewAdapter(profile, engine, raster, testLogger())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if _, err := a.ExtractText(context.Background(), "scan.pdf"); err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	gray, ok := engine.calls[0].(*image.Gray)
	if !ok {
		t.Fatalf("preprocessed adapter passed %T to the engine, want *image.Gray", engine.calls[0])
	}
	for i, v := range gray.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d = %d, want a bilevel image", i, v)
		}
	}
}

func TestExtractTextFailures(t *testing.T) {
	t.Run("rasterizer error", func(t *testing.T) {
		raster := &fakeRasterizer{err: errors.New("corrupt xref")}
		a, err := NewAdapter(directProfile(), &fakeEngine{}, raster, testLogger())
		if err != nil {
			t.Fatalf("NewAdapter: %v", err)
		}
		_, err = a.ExtractText(context.Background(), "broken.pdf")
		if !errs.IsKind(err, errs.Processing) {
			t.Fatalf("expected a processing error, got %v", err)
		}
		if !strings.Contains(err.Error(), "broken.pdf") {
			t.Errorf("error should name the document: %v", err)
		}
	})

	t.Run("engine error abandons the document", func(t *testing.T) {
		engine := &fakeEngine{
			results: []PageResult{{Text: "ok"}, {}},
			failOn:  2,
			err:     fmt.Errorf("engine crashed"),
		}
		raster := &fakeRasterizer{pages: []image.Image{textPage(60, 40), textPage(60, 40)}}
		a, err := NewAdapter(directProfile(), engine, raster, testLogger())
		if err != nil {
			t.Fatalf("NewAdapter: %v", err)
		}
		got, err := a.ExtractText(context.Background(), "doc.pdf")
		if !errs.IsKind(err, errs.Processing) {
			t.Fatalf("expected a processing error, got %v", err)
		}
		if !strings.Contains(err.Error(), "page 2") {
			t.Errorf("error should name the failing page: %v", err)
		}
		if got.Text != "" {
			t.Errorf("no partial text on failure, got %q", got.Text)
		}
	})

	t.Run("zero pages", func(t *testing.T) {
		a, err := NewAdapter(directProfile(), &fakeEngine{}, &fakeRasterizer{}, testLogger())
		if err != nil {
			t.Fatalf("NewAdapter: %v", err)
		}
		_, err = a.ExtractText(context.Background(), "empty.pdf")
		if !errs.IsKind(err, errs.Processing) {
			t.Fatalf("expected a processing error, got %v", err)
		}
	})
}

func TestEngineInfo(t *testing.T) {
	profile := models.ProcessingProfile{Engine: models.EnginePreprocessed, DPI: 300, Deskew: true, Language: "deu"}
	a, err := NewAdapter(profile, &fakeEngine{}, &fakeRasterizer{}, testLogger())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	info := a.EngineInfo()
	if info.Name != "fake" || info.Version != "0.0.1" {
		t.Errorf("engine identity not passed through: %+v", info)
	}
	if info.Mode != models.EnginePreprocessed || !info.Preprocessing {
		t.Errorf("mode not reported: %+v", info)
	}
	if info.DPI != 300 || info.Language != "deu" {
		t.Errorf("profile not reported: %+v", info)
	}

	langs := a.SupportedLanguages()
	if len(langs) != 2 || langs[0] != "eng" {
		t.Errorf("SupportedLanguages = %v", langs)
	}
}

func TestCapEdge(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if got := capEdge(small, 3072); got != small {
		t.Error("images within bounds must be returned unchanged")
	}

	big := image.NewRGBA(image.Rect(0, 0, 6144, 3072))
	got := capEdge(big, 3072)
	b := got.Bounds()
	if b.Dx() != 3072 || b.Dy() != 1536 {
		t.Errorf("scaled to %dx%d, want 3072x1536", b.Dx(), b.Dy())
	}
}

package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes pages with a local Tesseract installation.
// A fresh client is created per page so the engine is safe for concurrent
// use across documents.
type TesseractEngine struct{}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

func (e *TesseractEngine) Languages() []string {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil || len(langs) == 0 {
		return []string{"eng"}
	}
	return langs
}

// Recognize runs OCR on one page image. Confidence is the mean word
// confidence Tesseract reports, on its native 0-100 scale.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, lang string) (PageResult, error) {
	if err := ctx.Err(); err != nil {
		return PageResult{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return PageResult{}, fmt.Errorf("encoding page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return PageResult{}, fmt.Errorf("setting language %q: %w", lang, err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return PageResult{}, fmt.Errorf("loading page image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return PageResult{}, fmt.Errorf("running tesseract: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text extraction succeeded; missing confidences are not fatal.
		return PageResult{Text: strings.TrimSpace(text)}, nil
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	var conf float64
	if len(boxes) > 0 {
		conf = sum / float64(len(boxes))
	}
	return PageResult{Text: strings.TrimSpace(text), Confidence: conf}, nil
}

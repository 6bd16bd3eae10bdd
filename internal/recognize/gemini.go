package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	xdraw "golang.org/x/image/draw"
)

const transcriptionSystemPrompt = "You are a document transcription tool. Your task is to transcribe the text content of a scanned page image. Accuracy and completeness are of utmost importance."

const transcriptionUserPrompt = `You will be provided with one page image of a scanned document.

Transcribe ALL text visible on the page, preserving the reading order. Keep line breaks between paragraphs. Render tabular content as plain text rows with cells separated by two or more spaces. Do not describe the page, do not summarize, and do not add any preamble. Return ONLY the transcribed text.`

// maxGeminiEdge caps the longest side of a page image sent to the model.
// Larger renders are downscaled before encoding.
const maxGeminiEdge = 3072

// GeminiEngine recognizes pages with a Gemini model on Vertex AI. It never
// reports a confidence; the model exposes none.
type GeminiEngine struct {
	model      *genai.GenerativeModel
	modelName  string
	baseClient *genai.Client
}

// NewGeminiEngine dials Vertex AI and configures a transcription model.
// Callers own the returned engine and must Close it.
func NewGeminiEngine(ctx context.Context, projectID, region, modelName string) (*GeminiEngine, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewGeminiEngine: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := baseClient.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(transcriptionSystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &GeminiEngine{model: model, modelName: modelName, baseClient: baseClient}, nil
}

func (e *GeminiEngine) Name() string    { return "gemini" }
func (e *GeminiEngine) Version() string { return e.modelName }

// Languages is open-ended for Gemini; the model is multilingual and has no
// enumerable language list.
func (e *GeminiEngine) Languages() []string { return nil }

func (e *GeminiEngine) Close() error {
	if e.baseClient != nil {
		return e.baseClient.Close()
	}
	return nil
}

func (e *GeminiEngine) Recognize(ctx context.Context, img image.Image, lang string) (PageResult, error) {
	img = capEdge(img, maxGeminiEdge)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return PageResult{}, fmt.Errorf("encoding page image: %w", err)
	}

	prompt := transcriptionUserPrompt
	if lang != "" {
		prompt += fmt.Sprintf("\n\nThe document language code is %q.", lang)
	}

	resp, err := e.model.GenerateContent(ctx,
		genai.ImageData("png", buf.Bytes()),
		genai.Text(prompt),
	)
	if err != nil {
		return PageResult{}, fmt.Errorf("model.GenerateContent: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return PageResult{}, fmt.Errorf("model returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return PageResult{Text: strings.TrimSpace(sb.String())}, nil
}

// capEdge scales img down so its longest side is at most max pixels. Images
// already within bounds are returned unchanged.
func capEdge(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= max {
		return img
	}

	scale := float64(max) / float64(longest)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

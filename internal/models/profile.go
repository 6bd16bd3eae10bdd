package models

import "fmt"

// DocumentType is the classification assigned to a PDF by the analyzer.
type DocumentType string

const (
	TypeScanned    DocumentType = "scanned"
	TypeNativeText DocumentType = "native_text"
	TypeMixed      DocumentType = "mixed"
	TypeTableHeavy DocumentType = "table_heavy"
	TypeImageHeavy DocumentType = "image_heavy"
)

// DocumentTypes lists all classifications in rule-evaluation order.
var DocumentTypes = []DocumentType{
	TypeScanned, TypeTableHeavy, TypeImageHeavy, TypeNativeText, TypeMixed,
}

// EngineMode selects which recognition adapter handles a document.
type EngineMode string

const (
	// EngineDirect rasterizes and recognizes pages as rendered.
	EngineDirect EngineMode = "direct"
	// EnginePreprocessed runs every page image through the preprocessing
	// pipeline before recognition.
	EnginePreprocessed EngineMode = "preprocessed"
)

// ProcessingProfile bundles the knobs applied uniformly to one document run.
type ProcessingProfile struct {
	Engine          EngineMode `yaml:"engine" json:"engine"`
	DPI             int        `yaml:"dpi" json:"dpi"`
	Deskew          bool       `yaml:"deskew" json:"deskew"`
	Denoise         bool       `yaml:"denoise" json:"denoise"`
	EnhanceContrast bool       `yaml:"enhanceContrast" json:"enhanceContrast"`
	Language        string     `yaml:"language" json:"language"`
}

// MinDPI and MaxDPI bound the rasterization density a profile may request.
const (
	MinDPI = 72
	MaxDPI = 600
)

// Validate reports whether the profile can be handed to the processor.
func (p ProcessingProfile) Validate() error {
	switch p.Engine {
	case EngineDirect, EnginePreprocessed:
	default:
		return fmt.Errorf("unsupported engine mode %q", p.Engine)
	}
	if p.DPI < MinDPI || p.DPI > MaxDPI {
		return fmt.Errorf("dpi %d outside supported range %d-%d", p.DPI, MinDPI, MaxDPI)
	}
	return nil
}

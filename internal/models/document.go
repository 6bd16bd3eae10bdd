package models

import (
	"time"

	"github.com/google/uuid"
)

// Table is one extracted table: an ordered grid of cell strings plus the
// page it was found on and an optional extractor confidence.
type Table struct {
	Page       int        `json:"page"`
	Rows       [][]string `json:"rows"`
	Confidence float64    `json:"confidence,omitempty"`
}

// Document is the result of one successful processing run. The orchestrator
// owns the value for the duration of the run; Confidence, OutputDir and
// GeneratedFiles are filled in as the corresponding stage completes.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"sourcePath"`
	Text       string    `json:"-"`
	Tables     []Table   `json:"-"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`

	OutputDir      string   `json:"outputDir"`
	GeneratedFiles []string `json:"generatedFiles"`

	// ProcessingTime is the wall-clock duration of the whole run in seconds.
	ProcessingTime float64 `json:"processingTime"`
}

// NewDocument creates a document shell with a fresh identity.
func NewDocument(name, sourcePath string) Document {
	return Document{
		ID:         uuid.NewString(),
		Name:       name,
		SourcePath: sourcePath,
		CreatedAt:  time.Now(),
	}
}

// Metadata is the persisted sidecar record written next to the extracted
// text, mirroring what Get/List rehydrate later.
type Metadata struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TextLength     int       `json:"textLength"`
	TableCount     int       `json:"tableCount"`
	Confidence     float64   `json:"confidence"`
	ProcessingTime float64   `json:"processingTime"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MetadataOf derives the sidecar record for a processed document.
func MetadataOf(d Document) Metadata {
	return Metadata{
		ID:             d.ID,
		Name:           d.Name,
		TextLength:     len(d.Text),
		TableCount:     len(d.Tables),
		Confidence:     d.Confidence,
		ProcessingTime: d.ProcessingTime,
		CreatedAt:      d.CreatedAt,
	}
}

// RunRecord is the catalog entry tracking one processing run. It tracks the
// overall status and metadata of the file across status transitions.
type RunRecord struct {
	FileHash         string       `firestore:"fileHash,omitempty"`
	OriginalFilename string       `firestore:"originalFilename,omitempty"`
	DocumentName     string       `firestore:"documentName,omitempty"`
	DocumentType     DocumentType `firestore:"documentType,omitempty"`
	Status           string       `firestore:"status,omitempty"`
	ErrorDetails     string       `firestore:"errorDetails,omitempty"`
	PageCount        int          `firestore:"pageCount,omitempty"`
	Confidence       float64      `firestore:"confidence,omitempty"`
	CreatedAt        time.Time    `firestore:"createdAt,omitempty"`
}

// Run statuses, in lifecycle order.
const (
	StatusValidating = "VALIDATING"
	StatusProcessing = "PROCESSING"
	StatusComplete   = "COMPLETE"
	StatusFailed     = "FAILED"
)

// Package catalog tracks processing runs. The Firestore implementation keeps
// one record per source file, keyed for dedupe by content hash, and walks it
// through the VALIDATING / PROCESSING / COMPLETE / FAILED lifecycle.
package catalog

import (
	"context"

	"github.com/quillscan/quillscan/internal/models"
)

// Catalog records the lifecycle of processing runs.
type Catalog interface {
	// FindByHash reports whether a run already exists for the content hash.
	FindByHash(ctx context.Context, fileHash string) (id string, found bool, err error)
	// Begin creates a run record in VALIDATING state and returns its id.
	Begin(ctx context.Context, fileHash, originalFilename string) (id string, err error)
	// MarkProcessing moves the run to PROCESSING once classification is done.
	MarkProcessing(ctx context.Context, id string, docType models.DocumentType, pageCount int) error
	// Complete moves the run to COMPLETE and records the outcome.
	Complete(ctx context.Context, id string, doc models.Document) error
	// Fail moves the run to FAILED with a reason.
	Fail(ctx context.Context, id, reason string) error
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]models.RunRecord, error)
}

// Noop is the catalog used when no run tracking is configured, such as
// one-off CLI invocations.
type Noop struct{}

func (Noop) FindByHash(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Begin(context.Context, string, string) (string, error)    { return "", nil }
func (Noop) MarkProcessing(context.Context, string, models.DocumentType, int) error {
	return nil
}
func (Noop) Complete(context.Context, string, models.Document) error { return nil }
func (Noop) Fail(context.Context, string, string) error              { return nil }
func (Noop) List(context.Context, int) ([]models.RunRecord, error)   { return nil, nil }

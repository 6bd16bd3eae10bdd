package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

// archiveConcurrency caps parallel uploads per document.
const archiveConcurrency = 4

// Archiver mirrors a processed document's artifacts into a GCS bucket,
// one object per generated file under <prefix>/<document name>/.
type Archiver struct {
	bucket *gcs.BucketHandle
	prefix string
	logger *slog.Logger
}

func NewArchiver(client *gcs.Client, bucket, prefix string, logger *slog.Logger) (*Archiver, error) {
	if client == nil || bucket == "" {
		return nil, errs.Ef(errs.Configuration, "storage.NewArchiver", "client and bucket are required")
	}
	return &Archiver{bucket: client.Bucket(bucket), prefix: prefix, logger: logger}, nil
}

// ArchiveDocument uploads every generated artifact. Uploads are idempotent:
// an object that already exists is skipped, so re-archiving a document after
// a partial failure is safe.
func (a *Archiver) ArchiveDocument(ctx context.Context, doc models.Document) error {
	const op = "storage.ArchiveDocument"

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveConcurrency)
	for _, file := range doc.GeneratedFiles {
		g.Go(func() error {
			object := path.Join(a.prefix, doc.Name, filepath.Base(file))
			if err := a.saveObject(ctx, object, file); err != nil {
				return fmt.Errorf("archiving %s: %w", file, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errs.E(errs.Storage, op, err)
	}
	a.logger.Info("document archived",
		slog.String("name", doc.Name),
		slog.Int("objects", len(doc.GeneratedFiles)))
	return nil
}

// saveObject writes a local file to a GCS object only if the object doesn't
// already exist. The precondition turns duplicate uploads into a skip
// instead of an overwrite.
func (a *Archiver) saveObject(ctx context.Context, objectName, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	writer := a.bucket.Object(objectName).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			a.logger.Info("object already archived", slog.String("object", objectName))
			return nil
		}
		return fmt.Errorf("writing object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			a.logger.Info("object already archived", slog.String("object", objectName))
			return nil
		}
		return fmt.Errorf("finalizing object %s: %w", objectName, err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 412
}

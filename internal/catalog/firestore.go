package catalog

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

// FirestoreCatalog stores run records in a Firestore collection.
type FirestoreCatalog struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient centralizes Firestore client creation.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errs.Ef(errs.Configuration, "catalog.NewFirestoreClient", "projectID must be provided")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, errs.E(errs.Configuration, "catalog.NewFirestoreClient", fmt.Errorf("creating Firestore client: %w", err))
	}
	return client, nil
}

func NewFirestoreCatalog(client *firestore.Client, collection string) (*FirestoreCatalog, error) {
	if client == nil || collection == "" {
		return nil, errs.Ef(errs.Configuration, "catalog.NewFirestoreCatalog", "client and collection are required")
	}
	return &FirestoreCatalog{client: client, collection: collection}, nil
}

func (c *FirestoreCatalog) FindByHash(ctx context.Context, fileHash string) (string, bool, error) {
	docs, err := c.client.Collection(c.collection).
		Where("fileHash", "==", fileHash).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return "", false, errs.E(errs.Storage, "catalog.FindByHash", fmt.Errorf("querying for duplicates: %w", err))
	}
	if len(docs) > 0 {
		return docs[0].Ref.ID, true, nil
	}
	return "", false, nil
}

func (c *FirestoreCatalog) Begin(ctx context.Context, fileHash, originalFilename string) (string, error) {
	rec := models.RunRecord{
		FileHash:         fileHash,
		OriginalFilename: originalFilename,
		Status:           models.StatusValidating,
		CreatedAt:        time.Now(),
	}
	docRef, _, err := c.client.Collection(c.collection).Add(ctx, rec)
	if err != nil {
		return "", errs.E(errs.Storage, "catalog.Begin", fmt.Errorf("creating run record: %w", err))
	}
	return docRef.ID, nil
}

func (c *FirestoreCatalog) MarkProcessing(ctx context.Context, id string, docType models.DocumentType, pageCount int) error {
	return c.update(ctx, id, []firestore.Update{
		{Path: "status", Value: models.StatusProcessing},
		{Path: "documentType", Value: string(docType)},
		{Path: "pageCount", Value: pageCount},
	})
}

func (c *FirestoreCatalog) Complete(ctx context.Context, id string, doc models.Document) error {
	return c.update(ctx, id, []firestore.Update{
		{Path: "status", Value: models.StatusComplete},
		{Path: "documentName", Value: doc.Name},
		{Path: "confidence", Value: doc.Confidence},
	})
}

func (c *FirestoreCatalog) Fail(ctx context.Context, id, reason string) error {
	return c.update(ctx, id, []firestore.Update{
		{Path: "status", Value: models.StatusFailed},
		{Path: "errorDetails", Value: reason},
	})
}

func (c *FirestoreCatalog) List(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	docs, err := c.client.Collection(c.collection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, errs.E(errs.Storage, "catalog.List", fmt.Errorf("listing runs: %w", err))
	}
	out := make([]models.RunRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.RunRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, errs.E(errs.Storage, "catalog.List", fmt.Errorf("decoding run %s: %w", doc.Ref.ID, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *FirestoreCatalog) update(ctx context.Context, id string, updates []firestore.Update) error {
	if _, err := c.client.Collection(c.collection).Doc(id).Update(ctx, updates); err != nil {
		return errs.E(errs.Storage, "catalog.update", fmt.Errorf("updating run %s: %w", id, err))
	}
	return nil
}

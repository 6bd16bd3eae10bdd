// Package storage persists processed documents: a local filesystem store
// for the extraction artifacts and a GCS archiver for the source PDFs.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

// maxNameSuffix bounds the `_NN` uniquing loop so a pathological directory
// cannot spin Save forever.
const maxNameSuffix = 999

// Store writes one directory per processed document under a root, with the
// extracted text, tables, metadata and a copy of the source PDF inside.
type Store struct {
	root   string
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) (*Store, error) {
	const op = "storage.NewStore"
	if root == "" {
		return nil, errs.Ef(errs.Configuration, op, "output root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errs.E(errs.Storage, op, fmt.Errorf("creating output root %s: %w", root, err))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger}, nil
}

// Save persists the document's artifacts into a freshly allocated directory.
// The directory name starts from doc.Name and gains a numeric suffix when the
// name is already taken; the document is renamed to match the final directory.
// On any write failure the partial directory is removed and nothing is kept.
func (s *Store) Save(doc *models.Document) error {
	const op = "storage.Save"

	dir, name, err := s.allocate(doc.Name)
	if err != nil {
		return err
	}
	doc.Name = name
	doc.OutputDir = dir
	doc.GeneratedFiles = nil

	if err := s.writeArtifacts(doc); err != nil {
		_ = os.RemoveAll(dir)
		doc.OutputDir = ""
		doc.GeneratedFiles = nil
		return errs.E(errs.Storage, op, err)
	}

	s.logger.Info("document stored",
		slog.String("name", doc.Name),
		slog.String("dir", dir),
		slog.Int("files", len(doc.GeneratedFiles)))
	return nil
}

// allocate reserves a new directory for the document. os.Mkdir is the
// reservation: it fails with ErrExist when another run holds the name, so
// concurrent saves of same-named documents cannot collide.
func (s *Store) allocate(name string) (dir, finalName string, err error) {
	const op = "storage.Save"
	if name == "" {
		return "", "", errs.Ef(errs.Storage, op, "document name cannot be empty")
	}

	candidate := name
	for i := 0; ; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s_%02d", name, i)
		}
		dir := filepath.Join(s.root, candidate)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, candidate, nil
		}
		if !os.IsExist(err) {
			return "", "", errs.E(errs.Storage, op, fmt.Errorf("creating %s: %w", dir, err))
		}
		if i >= maxNameSuffix {
			return "", "", errs.Ef(errs.Storage, op, "no free directory name for %q after %d attempts", name, maxNameSuffix)
		}
	}
}

func (s *Store) writeArtifacts(doc *models.Document) error {
	textPath := filepath.Join(doc.OutputDir, doc.Name+"_text.txt")
	if err := os.WriteFile(textPath, []byte(doc.Text), 0o644); err != nil {
		return fmt.Errorf("writing text artifact: %w", err)
	}
	doc.GeneratedFiles = append(doc.GeneratedFiles, textPath)

	if len(doc.Tables) > 0 {
		tablesPath := filepath.Join(doc.OutputDir, doc.Name+"_tables.json")
		data, err := json.MarshalIndent(doc.Tables, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding tables: %w", err)
		}
		if err := os.WriteFile(tablesPath, data, 0o644); err != nil {
			return fmt.Errorf("writing tables artifact: %w", err)
		}
		doc.GeneratedFiles = append(doc.GeneratedFiles, tablesPath)
	}

	if doc.SourcePath != "" {
		originalPath := filepath.Join(doc.OutputDir, doc.Name+"_original.pdf")
		if err := copyFile(doc.SourcePath, originalPath); err != nil {
			// The source may have vanished since processing started; the
			// extraction itself is intact, so record and continue.
			s.logger.Warn("could not copy original", slog.String("source", doc.SourcePath), slog.Any("error", err))
		} else {
			doc.GeneratedFiles = append(doc.GeneratedFiles, originalPath)
		}
	}

	metaPath := filepath.Join(doc.OutputDir, doc.Name+"_metadata.json")
	data, err := json.MarshalIndent(models.MetadataOf(*doc), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata artifact: %w", err)
	}
	doc.GeneratedFiles = append(doc.GeneratedFiles, metaPath)
	return nil
}

// Get loads the metadata sidecar of a stored document by its final name.
func (s *Store) Get(name string) (models.Metadata, error) {
	const op = "storage.Get"

	metaPath := filepath.Join(s.root, name, name+"_metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return models.Metadata{}, errs.E(errs.Storage, op, fmt.Errorf("reading %s: %w", metaPath, err))
	}
	var meta models.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.Metadata{}, errs.E(errs.Storage, op, fmt.Errorf("decoding %s: %w", metaPath, err))
	}
	return meta, nil
}

// List returns stored document metadata, newest first. Directories without
// a readable metadata sidecar are skipped. limit <= 0 means no limit.
func (s *Store) List(limit, offset int) ([]models.Metadata, error) {
	const op = "storage.List"

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errs.E(errs.Storage, op, fmt.Errorf("reading output root: %w", err))
	}

	var out []models.Metadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Get(e.Name())
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})

	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

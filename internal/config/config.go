// Package config loads application settings: flags and environment pick the
// deployment values, an optional YAML file overrides the per-type
// processing profiles.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quillscan/quillscan/internal/analyzer"
	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GCP holds the settings for the cloud-backed deployment. All fields are
// optional for local CLI use.
type GCP struct {
	ProjectID        string `yaml:"projectId"`
	Region           string `yaml:"region"`
	ArchiveBucket    string `yaml:"archiveBucket"`
	ArchivePrefix    string `yaml:"archivePrefix"`
	Collection       string `yaml:"collection"`
	WorkflowID       string `yaml:"workflowId"`
	WorkflowLocation string `yaml:"workflowLocation"`
	GeminiModel      string `yaml:"geminiModel"`
}

// App is the full application configuration.
type App struct {
	OutputDir   string `yaml:"outputDir"`
	Engine      string `yaml:"engine"` // tesseract or gemini
	Concurrency int    `yaml:"concurrency"`
	GCP         GCP    `yaml:"gcp"`

	// Profiles overrides the built-in type-to-profile mapping. Types not
	// listed keep their defaults.
	Profiles map[models.DocumentType]models.ProcessingProfile `yaml:"profiles"`
}

// Default returns the configuration used when no file is given.
func Default() App {
	return App{
		OutputDir:   "processed",
		Engine:      "tesseract",
		Concurrency: 4,
		GCP: GCP{
			ProjectID:        GetEnv("PROJECT_ID", ""),
			Region:           GetEnv("GCP_REGION", "us-central1"),
			ArchiveBucket:    GetEnv("ARCHIVE_BUCKET", ""),
			ArchivePrefix:    GetEnv("ARCHIVE_PREFIX", "documents"),
			Collection:       GetEnv("FIRESTORE_COLLECTION", "runs"),
			WorkflowID:       GetEnv("WORKFLOW_ID", "document-recognition-orchestrator"),
			WorkflowLocation: GetEnv("WORKFLOW_LOCATION", "us-central1"),
			GeminiModel:      GetEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing path is
// not an error; it returns the defaults.
func Load(path string) (App, error) {
	const op = "config.Load"

	app := Default()
	if path == "" {
		return app, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return App{}, errs.E(errs.Configuration, op, fmt.Errorf("reading %s: %w", path, err))
	}
	if err := yaml.Unmarshal(data, &app); err != nil {
		return App{}, errs.E(errs.Configuration, op, fmt.Errorf("parsing %s: %w", path, err))
	}
	if err := app.validate(); err != nil {
		return App{}, errs.E(errs.Configuration, op, err)
	}
	return app, nil
}

func (a App) validate() error {
	if a.OutputDir == "" {
		return fmt.Errorf("outputDir cannot be empty")
	}
	if a.Engine != "tesseract" && a.Engine != "gemini" {
		return fmt.Errorf("unknown engine %q", a.Engine)
	}
	if a.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", a.Concurrency)
	}
	for dt := range a.Profiles {
		known := false
		for _, t := range models.DocumentTypes {
			if dt == t {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("profile override for unknown document type %q", dt)
		}
	}
	return nil
}

// ProfileTable merges the configured overrides over the built-in profiles
// and checks that every resulting profile is usable.
func (a App) ProfileTable() (analyzer.ProfileTable, error) {
	table := analyzer.DefaultProfiles().Merge(analyzer.ProfileTable(a.Profiles))
	for _, dt := range models.DocumentTypes {
		if _, err := table.For(dt); err != nil {
			return nil, err
		}
	}
	return table, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quillscan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	app, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.OutputDir != "processed" || app.Engine != "tesseract" || app.Concurrency != 4 {
		t.Errorf("unexpected defaults: %+v", app)
	}
}

func TestLoadOverridesProfiles(t *testing.T) {
	path := writeConfig(t, `
outputDir: out
engine: gemini
concurrency: 2
profiles:
  native_text:
    engine: preprocessed
    dpi: 200
    deskew: true
    language: deu
`)
	app, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.Engine != "gemini" || app.OutputDir != "out" {
		t.Errorf("top-level fields not applied: %+v", app)
	}

	table, err := app.ProfileTable()
	if err != nil {
		t.Fatalf("ProfileTable: %v", err)
	}

	native, err := table.For(models.TypeNativeText)
	if err != nil {
		t.Fatalf("For(native_text): %v", err)
	}
	if native.Engine != models.EnginePreprocessed || native.DPI != 200 || native.Language != "deu" {
		t.Errorf("override not applied: %+v", native)
	}

	// Types without overrides keep the defaults.
	scanned, err := table.For(models.TypeScanned)
	if err != nil {
		t.Fatalf("For(scanned): %v", err)
	}
	if scanned.DPI != 300 || !scanned.Deskew {
		t.Errorf("default profile disturbed: %+v", scanned)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown engine", "engine: abbyy\n"},
		{"zero concurrency", "concurrency: 0\n"},
		{"empty output dir", `outputDir: ""` + "\n"},
		{"unknown document type", "profiles:\n  hologram:\n    engine: direct\n    dpi: 150\n"},
		{"not yaml", "{{{\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errs.IsKind(err, errs.Configuration) {
				t.Errorf("expected a configuration error, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errs.IsKind(err, errs.Configuration) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestProfileTableRejectsInvalidOverride(t *testing.T) {
	app := Default()
	app.Profiles = map[models.DocumentType]models.ProcessingProfile{
		models.TypeMixed: {Engine: models.EngineDirect, DPI: 9999},
	}
	if _, err := app.ProfileTable(); !errs.IsKind(err, errs.Configuration) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

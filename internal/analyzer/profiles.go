package analyzer

import (
	"github.com/quillscan/quillscan/internal/errs"
	"github.com/quillscan/quillscan/internal/models"
)

// ProfileTable maps each document type to its processing profile. The
// mapping is data, not logic: deployments override it from configuration
// without code changes.
type ProfileTable map[models.DocumentType]models.ProcessingProfile

// DefaultProfiles returns the built-in type-to-profile mapping.
func DefaultProfiles() ProfileTable {
	return ProfileTable{
		models.TypeScanned: {
			Engine: models.EnginePreprocessed, DPI: 300,
			Deskew: true, Denoise: true, EnhanceContrast: true,
			Language: "eng",
		},
		models.TypeNativeText: {
			Engine: models.EngineDirect, DPI: 150,
			Language: "eng",
		},
		models.TypeMixed: {
			Engine: models.EnginePreprocessed, DPI: 250,
			Deskew: true, EnhanceContrast: true,
			Language: "eng",
		},
		models.TypeTableHeavy: {
			Engine: models.EnginePreprocessed, DPI: 300,
			Denoise: true, EnhanceContrast: true,
			Language: "eng",
		},
		models.TypeImageHeavy: {
			Engine: models.EnginePreprocessed, DPI: 300,
			Deskew: true, Denoise: true, EnhanceContrast: true,
			Language: "eng",
		},
	}
}

// For returns the profile attached to a document type.
func (t ProfileTable) For(dt models.DocumentType) (models.ProcessingProfile, error) {
	p, ok := t[dt]
	if !ok {
		return models.ProcessingProfile{}, errs.Ef(errs.Configuration, "profile lookup",
			"no profile configured for document type %q", dt)
	}
	if err := p.Validate(); err != nil {
		return models.ProcessingProfile{}, errs.E(errs.Configuration, "profile lookup", err)
	}
	return p, nil
}

// Merge overlays overrides onto the table, returning a new table.
func (t ProfileTable) Merge(overrides ProfileTable) ProfileTable {
	merged := make(ProfileTable, len(t))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

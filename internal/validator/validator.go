// Package validator is the client-side gate run before any upload is
// attempted. It never touches the network.
package validator

import (
	"strings"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
	"github.com/akrishnanDG/migration-analyzer/pkg/config"
)

// Rejection reasons shown to the user
const (
	ReasonNoFile          = "no file selected"
	ReasonUnsupportedType = "unsupported file type"
	ReasonTooLarge        = "file too large"
	ReasonMissingSource   = "source version is required"
	ReasonMissingTarget   = "target version is required"
)

// Rejection is returned when an artifact or version pair may not be submitted
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Validator checks artifacts and version pairs
type Validator struct {
	allowedExtensions []string
	maxFileSize       int64
}

// New creates a new Validator from the upload section of cfg
func New(cfg *config.Config) *Validator {
	return NewWithRules(cfg.Upload.AllowedExtensions, cfg.Upload.MaxFileSize)
}

// NewWithRules creates a Validator with explicit rules. A maxFileSize of 0
// disables the size check.
func NewWithRules(allowedExtensions []string, maxFileSize int64) *Validator {
	exts := make([]string, 0, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &Validator{
		allowedExtensions: exts,
		maxFileSize:       maxFileSize,
	}
}

// AllowedExtensions returns the accepted suffixes
func (v *Validator) AllowedExtensions() []string {
	return append([]string(nil), v.allowedExtensions...)
}

// Validate checks that artifact and cfg may be submitted together
func (v *Validator) Validate(artifact *models.Artifact, cfg models.MigrationConfig) error {
	if err := v.ValidateArtifact(artifact); err != nil {
		return err
	}
	return v.ValidateConfig(cfg)
}

// ValidateArtifact checks presence, extension, and size
func (v *Validator) ValidateArtifact(artifact *models.Artifact) error {
	if artifact == nil {
		return &Rejection{Reason: ReasonNoFile}
	}

	if !v.hasAllowedExtension(artifact.Name) {
		return &Rejection{Reason: ReasonUnsupportedType}
	}

	if v.maxFileSize > 0 && artifact.Size > v.maxFileSize {
		return &Rejection{Reason: ReasonTooLarge}
	}

	return nil
}

// ValidateConfig checks that both versions are set
func (v *Validator) ValidateConfig(cfg models.MigrationConfig) error {
	if strings.TrimSpace(cfg.SourceVersion) == "" {
		return &Rejection{Reason: ReasonMissingSource}
	}
	if strings.TrimSpace(cfg.TargetVersion) == "" {
		return &Rejection{Reason: ReasonMissingTarget}
	}
	return nil
}

func (v *Validator) hasAllowedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range v.allowedExtensions {
		// The extension alone is not a file name
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return true
		}
	}
	return false
}

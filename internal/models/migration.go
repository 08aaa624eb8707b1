package models

import (
	"strings"
)

// MigrationConfig is the source/target version pair sent with an analysis.
// Values are open strings so new versions need no code change.
type MigrationConfig struct {
	SourceVersion string `json:"source_version" yaml:"source_version"`
	TargetVersion string `json:"target_version" yaml:"target_version"`
}

// IsSet reports whether both versions are present
func (c MigrationConfig) IsSet() bool {
	return strings.TrimSpace(c.SourceVersion) != "" && strings.TrimSpace(c.TargetVersion) != ""
}

// String renders the pair for logs and prompts
func (c MigrationConfig) String() string {
	return c.SourceVersion + " → " + c.TargetVersion
}

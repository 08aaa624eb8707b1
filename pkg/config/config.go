package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the migration analyzer client
type Config struct {
	// Analysis service endpoint
	API APIConfig `yaml:"api"`

	// Credential persistence
	Auth AuthConfig `yaml:"auth"`

	// Client-side upload checks
	Upload UploadConfig `yaml:"upload"`

	// Default source/target pair
	Migration MigrationConfig `yaml:"migration"`

	// Report history paging
	Reports ReportsConfig `yaml:"reports"`

	// Display thresholds for report status labels
	Status StatusConfig `yaml:"status"`

	// Output configuration
	Output OutputConfig `yaml:"output"`
}

// APIConfig holds analysis service connection settings
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"` // requests per second
	UserAgent string        `yaml:"user_agent"`
}

// AuthConfig holds credential store settings
type AuthConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// UploadConfig holds artifact validation settings
type UploadConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxFileSize       int64    `yaml:"max_file_size"` // bytes, 0 disables the check
}

// MigrationConfig holds the default version pair sent with an analysis
type MigrationConfig struct {
	SourceVersion string `yaml:"source_version"`
	TargetVersion string `yaml:"target_version"`
}

// ReportsConfig holds report history settings
type ReportsConfig struct {
	PageSize int `yaml:"page_size"`
}

// StatusConfig holds report status label thresholds
type StatusConfig struct {
	MinorIssueThreshold int `yaml:"minor_issue_threshold"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	Format   string `yaml:"format"` // table, json
	Progress bool   `yaml:"progress"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// NewDefaultConfig returns a Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api",
			Timeout:   30 * time.Second,
			RateLimit: 10,
			UserAgent: "migration-analyzer",
		},
		Auth: AuthConfig{
			CredentialsFile: DefaultCredentialsFile(),
		},
		Upload: UploadConfig{
			AllowedExtensions: []string{".py", ".zip"},
			MaxFileSize:       10 * 1024 * 1024, // matches the server-side limit
		},
		Migration: MigrationConfig{
			SourceVersion: "Python 2",
			TargetVersion: "Python 3",
		},
		Reports: ReportsConfig{
			PageSize: 10,
		},
		Status: StatusConfig{
			MinorIssueThreshold: 3,
		},
		Output: OutputConfig{
			Format:   "table",
			Progress: true,
			LogLevel: "info",
		},
	}
}

// DefaultCredentialsFile returns the per-user credentials path
func DefaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "migration-analyzer", "credentials.json")
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := NewDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv fills unset values from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MIGRATION_ANALYZER_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("MIGRATION_ANALYZER_TOKEN_FILE"); v != "" {
		c.Auth.CredentialsFile = v
	}
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

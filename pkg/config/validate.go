package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msg := "configuration validation failed:\n"
	for _, err := range e {
		msg += fmt.Sprintf("  - %s\n", err.Error())
	}
	return msg
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	var errs ValidationErrors

	// Validate API configuration
	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "base URL is required"})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "invalid URL format"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "scheme must be http or https"})
	}

	if c.API.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "api.timeout", Message: "must be positive"})
	}

	if c.API.RateLimit < 1 {
		errs = append(errs, ValidationError{Field: "api.rate_limit", Message: "must be at least 1"})
	}

	if c.Auth.CredentialsFile == "" {
		errs = append(errs, ValidationError{Field: "auth.credentials_file", Message: "credentials file is required"})
	}

	// Validate upload rules
	if len(c.Upload.AllowedExtensions) == 0 {
		errs = append(errs, ValidationError{Field: "upload.allowed_extensions", Message: "at least one extension is required"})
	}
	for i, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("upload.allowed_extensions[%d]", i),
				Message: fmt.Sprintf("%q must start with a dot", ext),
			})
		}
	}

	if c.Upload.MaxFileSize < 0 {
		errs = append(errs, ValidationError{Field: "upload.max_file_size", Message: "cannot be negative"})
	}

	if c.Reports.PageSize < 1 {
		errs = append(errs, ValidationError{Field: "reports.page_size", Message: "must be at least 1"})
	}

	if c.Status.MinorIssueThreshold < 0 {
		errs = append(errs, ValidationError{Field: "status.minor_issue_threshold", Message: "cannot be negative"})
	}

	// Validate output configuration
	validFormats := map[string]bool{"table": true, "json": true}
	if !validFormats[c.Output.Format] {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: "must be one of: table, json",
		})
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Output.LogLevel] {
		errs = append(errs, ValidationError{
			Field:   "output.log_level",
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

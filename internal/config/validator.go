package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/packrat/internal/archive"
	"github.com/Iron-Ham/packrat/internal/fsx"
	"github.com/Iron-Ham/packrat/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.max_size_mb")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Settings for invalid values and returns all validation errors found
func (s *Settings) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, s.validateFormat()...)
	errors = append(errors, s.validateBaseDir()...)
	errors = append(errors, s.validateEncoding()...)
	errors = append(errors, s.validateExcludes()...)
	errors = append(errors, s.validateLogging()...)
	errors = append(errors, s.validateWatch()...)

	return errors
}

// validateFormat validates CompressFormat
func (s *Settings) validateFormat() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(archive.Formats(), s.CompressFormat) {
		errors = append(errors, ValidationError{
			Field:   "compress_format",
			Value:   s.CompressFormat,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(archive.Formats(), ", ")),
		})
	}

	return errors
}

// validateBaseDir validates BaseDir
func (s *Settings) validateBaseDir() []ValidationError {
	var errors []ValidationError

	if s.BaseDir == "" {
		errors = append(errors, ValidationError{
			Field:   "base_dir",
			Value:   s.BaseDir,
			Message: "cannot be empty (use \".\" for the working directory)",
		})
		return errors
	}

	if strings.ContainsRune(s.BaseDir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "base_dir",
			Value:   s.BaseDir,
			Message: "path contains invalid null character",
		})
	}

	// Reasonable path length limit (most filesystems have limits around 4096)
	const maxPathLength = 4096
	if len(s.BaseDir) > maxPathLength {
		errors = append(errors, ValidationError{
			Field:   "base_dir",
			Value:   s.BaseDir,
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
		})
	}

	return errors
}

// validateEncoding validates Encoding
func (s *Settings) validateEncoding() []ValidationError {
	var errors []ValidationError

	if !fsx.KnownEncoding(s.Encoding) {
		errors = append(errors, ValidationError{
			Field:   "encoding",
			Value:   s.Encoding,
			Message: "is not a supported encoding",
		})
	}

	return errors
}

// validateExcludes validates the exclude pattern list
func (s *Settings) validateExcludes() []ValidationError {
	var errors []ValidationError

	for i, pattern := range s.Excludes {
		fieldName := fmt.Sprintf("excludes[%d]", i)

		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: "pattern cannot be empty",
			})
			continue
		}

		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: "pattern does not compile",
			})
		}
	}

	return errors
}

// validateLogging validates the LoggingSettings
func (s *Settings) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if s.Logging.Level != "" && !slices.Contains(logging.ValidLevels(), s.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   s.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	// Max size must be positive
	if s.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   s.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if s.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   s.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if s.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   s.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateWatch validates the WatchSettings
func (s *Settings) validateWatch() []ValidationError {
	var errors []ValidationError

	if s.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   s.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	const maxDebounceMs = 60_000 // one minute
	if s.Watch.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   s.Watch.DebounceMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxDebounceMs),
		})
	}

	for i, pattern := range s.Watch.Ignore {
		fieldName := fmt.Sprintf("watch.ignore[%d]", i)

		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: "pattern cannot be empty",
			})
			continue
		}

		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: "pattern does not compile",
			})
		}
	}

	return errors
}

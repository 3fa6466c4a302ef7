// Package errors provides centralized error definitions and error handling utilities
// for the packrat codebase. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - ArchiveError: errors related to archive sessions and the session stack
//   - IOError: errors related to filesystem reads, writes, and streams
//
// Semantic errors represent common error conditions:
//   - InvalidArgumentError: a caller passed data of the wrong shape or type
//   - UnsupportedFormatError: an archive format outside the supported set
//   - UsageError: an operation invoked against an object in the wrong state
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewArchiveError("failed to open output", errors.ErrOperationFailed)
//
//	// Semantic error
//	err := errors.NewUnsupportedFormatError("rar")
//
//	// With context wrapping
//	err := errors.NewIOError("write failed", baseErr).WithPath("/tmp/out.tar.gz")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrSessionClosed) { ... }
//
//	// Check for error types
//	var archiveErr *errors.ArchiveError
//	if errors.As(err, &archiveErr) { ... }
//
//	// Use classification helpers
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry (none of the
//     built-in errors are; the codebase never retries on its own)
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Archive-related sentinel errors
var (
	// ErrSessionClosed indicates that an archive session has already been finalized.
	ErrSessionClosed = New("archive session is closed")
	// ErrNothingToFinalize indicates a finalize call with no open session.
	ErrNothingToFinalize = New("no archive session to finalize")
	// ErrStackNotEmpty indicates open sessions remain when none should.
	ErrStackNotEmpty = New("archive stack still has open sessions")
	// ErrEntryMissing indicates an archive entry source does not exist.
	ErrEntryMissing = New("archive entry source missing")
)

// File-related sentinel errors
var (
	// ErrUnknownEncoding indicates an encoding name outside the supported set.
	ErrUnknownEncoding = New("unknown encoding")
	// ErrBaseDirLocked indicates an attempt to change a locked base directory.
	ErrBaseDirLocked = New("base directory is locked")
	// ErrNotAFile indicates a path that exists but is not a regular file.
	ErrNotAFile = New("not a regular file")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrUnsupportedFormat indicates an archive format outside the supported set.
	ErrUnsupportedFormat = New("unsupported archive format")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PackratError is the base interface for all packrat errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type PackratError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ArchiveError represents errors related to archive sessions and the stack.
//
// Example:
//
//	err := errors.NewArchiveError("finalize failed", errors.ErrSessionClosed)
//	err = err.WithArchive("docs.tar.gz").WithFormat("tar.gz")
//	fmt.Println(err) // "archive error [archive=docs.tar.gz, format=tar.gz]: finalize failed: archive session is closed"
type ArchiveError struct {
	baseError
	Archive string
	Format  string
	Entry   string
}

// NewArchiveError creates a new ArchiveError.
func NewArchiveError(message string, cause error) *ArchiveError {
	return &ArchiveError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithArchive adds the archive's logical name to the error context.
func (e *ArchiveError) WithArchive(name string) *ArchiveError {
	e.Archive = name
	return e
}

// WithFormat adds the archive format to the error context.
func (e *ArchiveError) WithFormat(format string) *ArchiveError {
	e.Format = format
	return e
}

// WithEntry adds an entry name to the error context.
func (e *ArchiveError) WithEntry(entry string) *ArchiveError {
	e.Entry = entry
	return e
}

// WithSeverity sets the error severity.
func (e *ArchiveError) WithSeverity(s Severity) *ArchiveError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ArchiveError) WithRetryable(r bool) *ArchiveError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ArchiveError) Error() string {
	var parts []string
	if e.Archive != "" {
		parts = append(parts, fmt.Sprintf("archive=%s", e.Archive))
	}
	if e.Format != "" {
		parts = append(parts, fmt.Sprintf("format=%s", e.Format))
	}
	if e.Entry != "" {
		parts = append(parts, fmt.Sprintf("entry=%s", e.Entry))
	}

	prefix := "archive error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("archive error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ArchiveError) Is(target error) bool {
	if _, ok := target.(*ArchiveError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// IOError represents errors related to filesystem reads, writes, and streams.
//
// Example:
//
//	err := errors.NewIOError("copy failed", baseErr)
//	err = err.WithOp("copy").WithPath("/src/main.go")
type IOError struct {
	baseError
	Op   string
	Path string
}

// NewIOError creates a new IOError.
func NewIOError(message string, cause error) *IOError {
	return &IOError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithOp adds the failing operation name to the error context.
func (e *IOError) WithOp(op string) *IOError {
	e.Op = op
	return e
}

// WithPath adds the affected path to the error context.
func (e *IOError) WithPath(path string) *IOError {
	e.Path = path
	return e
}

// WithSeverity sets the error severity.
func (e *IOError) WithSeverity(s Severity) *IOError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *IOError) WithRetryable(r bool) *IOError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *IOError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}

	prefix := "io error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("io error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *IOError) Is(target error) bool {
	if _, ok := target.(*IOError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// InvalidArgumentError represents a caller passing data of the wrong shape.
//
// Example:
//
//	err := errors.NewInvalidArgumentError("patterns must be a string or string array")
//	err = err.WithField("patterns").WithValue(42)
type InvalidArgumentError struct {
	baseError
	Field string
	Value any
}

// NewInvalidArgumentError creates a new InvalidArgumentError.
func NewInvalidArgumentError(message string) *InvalidArgumentError {
	return &InvalidArgumentError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *InvalidArgumentError) WithField(field string) *InvalidArgumentError {
	e.Field = field
	return e
}

// WithValue adds the offending value to the error context.
func (e *InvalidArgumentError) WithValue(value any) *InvalidArgumentError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *InvalidArgumentError) WithCause(cause error) *InvalidArgumentError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *InvalidArgumentError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "invalid argument"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("invalid argument [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *InvalidArgumentError) Is(target error) bool {
	if _, ok := target.(*InvalidArgumentError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// UnsupportedFormatError represents an archive format outside the supported set.
//
// Example:
//
//	err := errors.NewUnsupportedFormatError("rar")
//	fmt.Println(err) // "unsupported archive format 'rar'"
type UnsupportedFormatError struct {
	baseError
	Format string
}

// NewUnsupportedFormatError creates a new UnsupportedFormatError.
func NewUnsupportedFormatError(format string) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		baseError: baseError{
			message:    fmt.Sprintf("unsupported archive format '%s'", format),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Format: format,
	}
}

// WithCause adds a cause to the error.
func (e *UnsupportedFormatError) WithCause(cause error) *UnsupportedFormatError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *UnsupportedFormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("unsupported archive format '%s': %v", e.Format, e.cause)
	}
	return fmt.Sprintf("unsupported archive format '%s'", e.Format)
}

// Is checks if this error matches the target.
func (e *UnsupportedFormatError) Is(target error) bool {
	if _, ok := target.(*UnsupportedFormatError); ok {
		return true
	}
	if errors.Is(target, ErrUnsupportedFormat) {
		return true
	}
	return e.baseError.Is(target)
}

// UsageError represents an operation invoked against an object in the wrong state.
//
// Example:
//
//	err := errors.NewUsageError("write after finalize")
//	err = err.WithOp("write").WithCause(errors.ErrSessionClosed)
type UsageError struct {
	baseError
	Op string
}

// NewUsageError creates a new UsageError.
func NewUsageError(message string) *UsageError {
	return &UsageError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithOp adds the offending operation name to the error context.
func (e *UsageError) WithOp(op string) *UsageError {
	e.Op = op
	return e
}

// WithCause adds a cause to the error.
func (e *UsageError) WithCause(cause error) *UsageError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *UsageError) Error() string {
	prefix := "usage error"
	if e.Op != "" {
		prefix = fmt.Sprintf("usage error [op=%s]", e.Op)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *UsageError) Is(target error) bool {
	if _, ok := target.(*UsageError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Built-in packrat errors default to false;
// the codebase never retries on its own, so this only reports what a
// caller explicitly marked via WithRetryable.
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements PackratError
	var packratErr PackratError
	if As(err, &packratErr) {
		return packratErr.IsRetryable()
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
// This checks for:
//   - Errors implementing PackratError with IsUserFacing() returning true
//   - Semantic errors (InvalidArgumentError, UnsupportedFormatError, UsageError)
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    displayToUser(err.Error())
//	} else {
//	    displayToUser("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements PackratError
	var packratErr PackratError
	if As(err, &packratErr) {
		return packratErr.IsUserFacing()
	}

	// Semantic errors are always user-facing
	var invalidArg *InvalidArgumentError
	var unsupported *UnsupportedFormatError
	var usage *UsageError

	if As(err, &invalidArg) || As(err, &unsupported) || As(err, &usage) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PackratError.
//
// Example:
//
//	switch errors.GetSeverity(err) {
//	case errors.SeverityCritical:
//	    alertOnCall(err)
//	case errors.SeverityError:
//	    log.Error("error occurred", "err", err)
//	case errors.SeverityWarning:
//	    log.Warn("warning", "err", err)
//	}
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	// Check if error implements PackratError
	var packratErr PackratError
	if As(err, &packratErr) {
		return packratErr.Severity()
	}

	// Default to Error severity for unknown errors
	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (ArchiveError or IOError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var archiveErr *ArchiveError
	var ioErr *IOError

	return As(err, &archiveErr) || As(err, &ioErr)
}

// IsSemanticError returns true if the error is a semantic error
// (InvalidArgumentError, UnsupportedFormatError, or UsageError).
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}

	var invalidArg *InvalidArgumentError
	var unsupported *UnsupportedFormatError
	var usage *UsageError

	return As(err, &invalidArg) || As(err, &unsupported) || As(err, &usage)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this preserves the PackratError interface.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to hydrate patterns")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to finalize archive %s", name)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

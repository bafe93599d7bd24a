// Package errors provides standardized error handling for the dialogue navigator.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeTreeLoadFailed       ErrorCode = "TREE_LOAD_FAILED"
	ErrCodeTreeValidationFailed ErrorCode = "TREE_VALIDATION_FAILED"

	ErrCodeInputReadFailed   ErrorCode = "INPUT_READ_FAILED"
	ErrCodeOutputWriteFailed ErrorCode = "OUTPUT_WRITE_FAILED"

	ErrCodeMetricsExportFailed ErrorCode = "METRICS_EXPORT_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigInvalidError reports a configuration value that cannot be used.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewTreeLoadFailedError reports a dialogue file that could not be read or decoded.
func NewTreeLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTreeLoadFailed,
		Message:   "Failed to load dialogue tree",
		Details:   err.Error(),
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTreeValidationFailedError reports every violation found in a dialogue tree.
func NewTreeValidationFailedError(violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTreeValidationFailed,
		Message:   "Dialogue tree is malformed",
		Details:   strings.Join(violations, "; "),
		Metadata:  map[string]interface{}{"violations": violations},
		Timestamp: time.Now().UTC(),
	}
}

// NewInputReadFailedError wraps a non-EOF failure reading user input.
func NewInputReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputReadFailed,
		Message:   "Failed to read user input",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewOutputWriteFailedError wraps a failure writing to the console.
func NewOutputWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutputWriteFailed,
		Message:   "Failed to write output",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMetricsExportFailedError wraps a failure writing the metrics textfile.
func NewMetricsExportFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetricsExportFailed,
		Message:   "Failed to export metrics",
		Details:   err.Error(),
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// IsFatal reports whether an error with this code must end the process.
// Only metrics export is tolerated: the conversation already happened.
func IsFatal(code ErrorCode) bool {
	return code != ErrCodeMetricsExportFailed
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.HasPrefix(codeStr, "TREE"):
		return "DIALOGUE_DATA"
	case strings.HasPrefix(codeStr, "INPUT") || strings.HasPrefix(codeStr, "OUTPUT"):
		return "CONSOLE"
	case strings.HasPrefix(codeStr, "METRICS"):
		return "OBSERVABILITY"
	default:
		return "OTHER"
	}
}

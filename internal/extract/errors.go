package extract

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrNotFound is returned when a source path does not resolve to an existing file.
	ErrNotFound = errors.New("PDF file not found")

	// ErrInsufficientData is returned when an OCR page carries no recognized lines,
	// so no line height can be estimated for it.
	ErrInsufficientData = errors.New("insufficient OCR data for line height estimate")

	// ErrConfiguration is returned when the scan extractor is invoked without
	// a usable OCR client.
	ErrConfiguration = errors.New("OCR client not configured")

	// ErrInvalidRegion is returned when a region of interest is not a proper
	// rectangle inside the unit square.
	ErrInvalidRegion = errors.New("invalid region of interest")
)

// ExtractionError wraps errors with additional context about the extraction failure.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "Extract", "ExtractScan").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// Page is the 0-based page index the failure refers to, or -1.
	Page int
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	prefix := fmt.Sprintf("extract: %s failed", e.Op)
	if e.Page >= 0 {
		prefix = fmt.Sprintf("extract: %s failed on page %d", e.Op, e.Page)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractionError creates a new document-level ExtractionError.
func NewExtractionError(op string, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Err:     err,
		Details: details,
		Page:    -1,
	}
}

// NewPageError creates a new ExtractionError bound to a single page.
func NewPageError(op string, page int, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Err:     err,
		Details: details,
		Page:    page,
	}
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return err // Already wrapped
	}

	return NewExtractionError(op, err, details)
}

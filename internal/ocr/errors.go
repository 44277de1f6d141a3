package ocr

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common OCR processing errors
var (
	// ErrPDFTooLarge is returned when the PDF exceeds the backend's size limit.
	ErrPDFTooLarge = errors.New("PDF file size exceeds the maximum limit (20MB)")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrOCRFailed is returned when the OCR backend fails to process the document.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrQuotaExceeded is returned when the remote service rejects the call
	// because a quota or rate limit is exhausted.
	ErrQuotaExceeded = errors.New("OCR service quota exceeded")

	// ErrTransient is returned for network failures and unavailable services.
	// Callers may retry these.
	ErrTransient = errors.New("transient OCR service failure")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrInvalidConfiguration is returned when a backend is missing required settings.
	ErrInvalidConfiguration = errors.New("invalid OCR configuration")

	// ErrContextCanceled is returned when the context is canceled during processing.
	ErrContextCanceled = errors.New("OCR processing was canceled")
)

// OCRError wraps errors with additional context about the OCR processing failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Analyze", "NewDocumentAIClient").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, err, details)
}

// classifyRPCError maps an error from a Google API call onto the package sentinels.
func classifyRPCError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return WrapOCRError(op, ErrContextCanceled, "processing was canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapOCRError(op, context.DeadlineExceeded, "processing timeout")
	}

	switch status.Code(err) {
	case codes.ResourceExhausted:
		return WrapOCRError(op, ErrQuotaExceeded, err.Error())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		return WrapOCRError(op, ErrTransient, err.Error())
	case codes.Canceled:
		return WrapOCRError(op, ErrContextCanceled, err.Error())
	case codes.InvalidArgument:
		return WrapOCRError(op, ErrInvalidPDF, "document format not supported or corrupted")
	case codes.Unauthenticated, codes.PermissionDenied:
		return WrapOCRError(op, ErrMissingCredentials, err.Error())
	case codes.NotFound:
		return WrapOCRError(op, ErrInvalidConfiguration, "processor not found")
	default:
		return WrapOCRError(op, ErrOCRFailed, err.Error())
	}
}

// validatePDF applies the checks every remote backend shares before upload.
func validatePDF(op string, pdf []byte, maxBytes int) error {
	if len(pdf) > maxBytes {
		return WrapOCRError(op, ErrPDFTooLarge, fmt.Sprintf("file size: %d bytes", len(pdf)))
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		return WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}
	return nil
}

//go:build !tesseract

package ocr

import "context"

// TesseractConfig configures local OCR.
type TesseractConfig struct {
	Languages []string
	DPI       float64
}

// TesseractClient is unavailable in builds without the "tesseract" tag.
type TesseractClient struct{}

// NewTesseractClient reports that local OCR was not compiled in.
func NewTesseractClient(TesseractConfig) (*TesseractClient, error) {
	return nil, WrapOCRError("NewTesseractClient", ErrInvalidConfiguration, "binary built without the tesseract tag")
}

// Analyze always fails.
func (t *TesseractClient) Analyze(context.Context, []byte) (*AnalyzeResult, error) {
	return nil, WrapOCRError("Analyze", ErrInvalidConfiguration, "binary built without the tesseract tag")
}

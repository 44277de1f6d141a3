package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"gazette/internal/config"
	"gazette/internal/ocr"
)

func TestLazyClientDefersDocumentAISettings(t *testing.T) {
	cfg := &config.Config{OCRBackend: config.BackendDocumentAI, OCRMaxConcurrent: 1}
	client := newOCRClient(context.Background(), cfg, zerolog.Nop())

	// Nothing was created, so there is nothing to release.
	if err := client.Close(); err != nil {
		t.Fatalf("Close before first use: %v", err)
	}

	_, err := client.Analyze(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, ocr.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration on first scan, got %v", err)
	}
	if msg := explainError(err).Error(); !strings.Contains(msg, "--no-ocr") {
		t.Fatalf("unexpected explanation %q", msg)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gazette/internal/config"
	"gazette/internal/extract"
	"gazette/internal/ocr"
	"gazette/internal/pdfdoc"
)

// loadConfig loads the environment configuration with the persistent flag
// overrides applied.
func loadConfig(cmd *cobra.Command, extra ...config.Option) (*config.Config, error) {
	noOCR, _ := cmd.Flags().GetBool("no-ocr")
	backend, _ := cmd.Flags().GetString("backend")

	opts := []config.Option{config.WithBackend(backend)}
	if noOCR {
		opts = append(opts, config.WithOCREnabled(false))
	}
	opts = append(opts, extra...)

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// lazyClient defers creating the OCR backend until the first scan, so that
// purely digital runs need no cloud credentials.
type lazyClient struct {
	once   sync.Once
	create func() (ocr.Client, func() error, error)
	client ocr.Client
	close  func() error
	err    error
}

func (l *lazyClient) Analyze(ctx context.Context, pdf []byte) (*ocr.AnalyzeResult, error) {
	l.once.Do(func() {
		l.client, l.close, l.err = l.create()
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.client.Analyze(ctx, pdf)
}

// Close releases the backend if it was created.
func (l *lazyClient) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// newOCRClient returns the configured backend behind the rate and concurrency
// limits.
func newOCRClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) *lazyClient {
	return &lazyClient{create: func() (ocr.Client, func() error, error) {
		var (
			client ocr.Client
			closer func() error
		)
		switch cfg.OCRBackend {
		case config.BackendDocumentAI:
			c, err := ocr.NewDocumentAIClient(ctx, ocr.DocumentAIConfig{
				ProjectID:        cfg.GoogleCloudProject,
				Location:         cfg.GoogleCloudLocation,
				ProcessorID:      cfg.DocumentAIProcessorID,
				ProcessorVersion: cfg.DocumentAIProcessorVersion,
				Timeout:          cfg.OCRTimeout,
			})
			if err != nil {
				return nil, nil, err
			}
			client, closer = c, c.Close
		case config.BackendVision:
			c, err := ocr.NewVisionClient(ctx)
			if err != nil {
				return nil, nil, err
			}
			client, closer = c, c.Close
		case config.BackendTesseract:
			c, err := ocr.NewTesseractClient(ocr.TesseractConfig{
				Languages: strings.Split(cfg.TesseractLang, "+"),
				DPI:       cfg.TesseractDPI,
			})
			if err != nil {
				return nil, nil, err
			}
			client = c
		default:
			return nil, nil, fmt.Errorf("unknown OCR backend %q", cfg.OCRBackend)
		}

		log.Debug().
			Str("backend", cfg.OCRBackend).
			Int("max_concurrent", cfg.OCRMaxConcurrent).
			Dur("rate_every", cfg.OCRRateEvery).
			Msg("OCR backend created")

		return ocr.Throttle(client, cfg.OCRRateEvery, cfg.OCRRateBurst, cfg.OCRMaxConcurrent), closer, nil
	}}
}

// newExtractor wires the PDF reader and the OCR client into an Extractor.
func newExtractor(cfg *config.Config, client ocr.Client) (*extract.Extractor, error) {
	return extract.New(extract.Options{
		DoOCR:  cfg.OCREnabled,
		OCR:    client,
		Open:   openPDF,
		Layout: cfg.GetLayout(),
	})
}

func openPDF(path string) (extract.Document, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// explainError provides user-friendly error messages for extraction failures
func explainError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("extraction timed out. Try increasing --timeout: %w", err)
	case errors.Is(err, context.Canceled), errors.Is(err, ocr.ErrContextCanceled):
		return fmt.Errorf("extraction was canceled: %w", err)
	case errors.Is(err, extract.ErrNotFound):
		return fmt.Errorf("PDF file not found: %w", err)
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured or rejected. Set GOOGLE_APPLICATION_CREDENTIALS "+
			"to a service account JSON file or GOOGLE_CREDENTIALS to its content, or run with --no-ocr: %w", err)
	case errors.Is(err, extract.ErrConfiguration), errors.Is(err, ocr.ErrInvalidConfiguration):
		return fmt.Errorf("OCR backend is not configured. Check OCR_BACKEND and its settings, or run with --no-ocr: %w", err)
	case errors.Is(err, ocr.ErrQuotaExceeded):
		return fmt.Errorf("OCR quota exceeded. Lower OCR_MAX_CONCURRENT or raise OCR_RATE_EVERY and retry: %w", err)
	case errors.Is(err, ocr.ErrTransient):
		return fmt.Errorf("OCR service temporarily unavailable, retry later: %w", err)
	case errors.Is(err, ocr.ErrPDFTooLarge):
		return fmt.Errorf("PDF file is too large for online OCR (maximum 20MB): %w", err)
	case errors.Is(err, ocr.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file: %w", err)
	default:
		return fmt.Errorf("extraction failed: %w", err)
	}
}

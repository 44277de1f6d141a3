// Package extract pulls the publication text out of gazette PDFs.
//
// Text is read from a fixed region of interest on every page: the first page
// skips the title block, the following pages only the running header. A PDF
// with an embedded text layer is read directly. When that yields nothing the
// document is treated as a scan and sent to an OCR engine; recognized lines
// are mapped back into PDF points, filtered to the same region and merged
// into rows (tab separated) and paragraphs (newline separated).
package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"gazette/internal/logger"
	"gazette/internal/ocr"
)

// Result is the outcome of extracting one document.
type Result struct {
	// Text is the extracted text. It is empty both when extraction found
	// nothing and when OCR was declined; OCRDeclined tells them apart.
	Text string `json:"text"`

	// IsDigital is true when the text came from the embedded text layer.
	IsDigital bool `json:"is_digital"`

	// OCRDeclined is true when the document is a scan and OCR was not permitted.
	OCRDeclined bool `json:"ocr_declined"`

	// Pages is the page count of the document.
	Pages int `json:"pages"`

	// SkippedPages lists 0-based pages whose OCR output could not be used.
	SkippedPages []int `json:"skipped_pages,omitempty"`

	// Duration is the wall time of the extraction.
	Duration time.Duration `json:"duration"`
}

// Options configures an Extractor.
type Options struct {
	// DoOCR permits falling back to OCR for documents without embedded text.
	DoOCR bool

	// OCR is the engine used for scans. Required when DoOCR is set and a scan
	// is encountered.
	OCR ocr.Client

	// Open resolves paths to documents.
	Open Opener

	// Layout holds the region of interest and line merge parameters.
	// The zero value selects DefaultLayout.
	Layout Layout
}

// Extractor runs digital extraction with an OCR fallback. It holds no
// per-document state and is safe for concurrent use.
type Extractor struct {
	opts Options
	log  zerolog.Logger
}

// New creates an Extractor.
func New(opts Options) (*Extractor, error) {
	const op = "New"

	if opts.Layout == (Layout{}) {
		opts.Layout = DefaultLayout()
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, NewExtractionError(op, err, "invalid layout")
	}

	return &Extractor{
		opts: opts,
		log:  logger.WithComponent("extract"),
	}, nil
}

// Layout returns the layout in use.
func (e *Extractor) Layout() Layout {
	return e.opts.Layout
}

// Extract returns the text of a single document.
func (e *Extractor) Extract(ctx context.Context, src Source) (Result, error) {
	const op = "Extract"
	start := time.Now()

	doc, err := e.resolve(src)
	if err != nil {
		return Result{}, err
	}

	log := e.log.With().Str("source", src.Name()).Logger()
	result := Result{Pages: len(doc.Pages())}

	text := e.opts.Layout.ExtractDigital(doc)
	switch {
	case text != "":
		result.Text = text
		result.IsDigital = true
		log.Debug().Int("text_length", len(text)).Msg("Extracted embedded text")

	case e.opts.DoOCR:
		if e.opts.OCR == nil {
			return Result{}, NewExtractionError(op, ErrConfiguration, "document is a scan and no OCR client is configured")
		}
		log.Debug().Msg("No embedded text in region of interest, running OCR")

		scan, err := e.opts.Layout.ExtractScan(ctx, doc, e.opts.OCR)
		if err != nil {
			return Result{}, err
		}
		for _, pageErr := range scan.PageErrors {
			log.Warn().Err(pageErr).Msg("Skipped page without usable OCR lines")
		}
		result.Text = scan.Text
		result.SkippedPages = scan.SkippedPages()
		log.Debug().
			Int("text_length", len(scan.Text)).
			Ints("skipped_pages", result.SkippedPages).
			Msg("Extracted text from OCR")

	default:
		result.OCRDeclined = true
		log.Debug().Msg("Document is a scan and OCR is disabled")
	}

	result.Duration = time.Since(start)
	return result, nil
}

// resolve normalizes a Source to an open Document.
func (e *Extractor) resolve(src Source) (Document, error) {
	const op = "Extract"

	if src.doc != nil {
		return src.doc, nil
	}
	if src.path == "" {
		return nil, NewExtractionError(op, ErrNotFound, "empty source")
	}

	if _, err := os.Stat(src.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewExtractionError(op, ErrNotFound, src.path)
		}
		return nil, NewExtractionError(op, err, fmt.Sprintf("cannot access %s", src.path))
	}
	if e.opts.Open == nil {
		return nil, NewExtractionError(op, ErrConfiguration, "no PDF opener configured")
	}

	doc, err := e.opts.Open(src.path)
	if err != nil {
		return nil, WrapExtractionError(op, err, fmt.Sprintf("failed to open %s", src.path))
	}
	return doc, nil
}

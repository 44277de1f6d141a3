//go:build tesseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"gazette/internal/logger"
)

const engineTesseract = "tesseract"

// TesseractConfig configures local OCR.
type TesseractConfig struct {
	// Languages are Tesseract language codes, e.g. "nld", "fra".
	Languages []string

	// DPI is the resolution pages are rasterized at. Default: 300.
	DPI float64
}

// TesseractClient implements Client with MuPDF rasterization and Tesseract
// line recognition. Geometry is reported in pixels of the rendered page.
type TesseractClient struct {
	config TesseractConfig
	log    zerolog.Logger
}

// NewTesseractClient creates a local OCR client.
func NewTesseractClient(config TesseractConfig) (*TesseractClient, error) {
	if config.DPI <= 0 {
		config.DPI = 300
	}
	return &TesseractClient{config: config, log: logger.WithComponent("tesseract")}, nil
}

// Analyze renders every page and recognizes its text lines.
func (t *TesseractClient) Analyze(ctx context.Context, pdf []byte) (*AnalyzeResult, error) {
	const op = "Analyze"

	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, WrapOCRError(op, ErrInvalidPDF, err.Error())
	}
	defer doc.Close()

	start := time.Now()
	result := &AnalyzeResult{Engine: engineTesseract}
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, WrapOCRError(op, ErrContextCanceled, err.Error())
		}
		page, err := t.recognizePage(doc, i)
		if err != nil {
			return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("page %d: %v", i+1, err))
		}
		result.Pages = append(result.Pages, page)
	}

	t.log.Debug().
		Int("pages", len(result.Pages)).
		Dur("duration", time.Since(start)).
		Msg("Tesseract OCR completed")

	return result, nil
}

func (t *TesseractClient) recognizePage(doc *fitz.Document, index int) (Page, error) {
	img, err := doc.ImageDPI(index, t.config.DPI)
	if err != nil {
		return Page{}, fmt.Errorf("render: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Page{}, fmt.Errorf("encode: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if len(t.config.Languages) > 0 {
		if err := client.SetLanguage(t.config.Languages...); err != nil {
			return Page{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return Page{}, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return Page{}, fmt.Errorf("bounding boxes: %w", err)
	}

	bounds := img.Bounds()
	page := Page{
		Number: index + 1,
		Width:  float64(bounds.Dx()),
		Height: float64(bounds.Dy()),
	}
	for _, box := range boxes {
		content := strings.TrimSpace(box.Word)
		if content == "" {
			continue
		}
		r := box.Box
		page.Lines = append(page.Lines, Line{
			Polygon: RectPolygon(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)),
			Content: content,
		})
	}
	return page, nil
}

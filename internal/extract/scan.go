package extract

import (
	"context"
	"fmt"
	"sort"

	"gazette/internal/ocr"
)

// ScanResult is the outcome of OCR based extraction.
type ScanResult struct {
	Text string

	// PageErrors holds one error per page that contributed nothing because
	// its OCR data was unusable. They wrap ErrInsufficientData.
	PageErrors []error
}

// SkippedPages returns the 0-based indexes of the pages listed in PageErrors.
func (r ScanResult) SkippedPages() []int {
	var pages []int
	for _, err := range r.PageErrors {
		if pe, ok := err.(*ExtractionError); ok && pe.Page >= 0 {
			pages = append(pages, pe.Page)
		}
	}
	return pages
}

// ExtractScan submits the document to the OCR client and rebuilds the text
// inside the region of interest of every page from the recognized lines.
func (l Layout) ExtractScan(ctx context.Context, doc Document, client ocr.Client) (ScanResult, error) {
	const op = "ExtractScan"

	if client == nil {
		return ScanResult{}, NewExtractionError(op, ErrConfiguration, "no OCR client supplied")
	}

	pdf, err := doc.Bytes()
	if err != nil {
		return ScanResult{}, NewExtractionError(op, err, "failed to serialize PDF for OCR")
	}

	analyzed, err := client.Analyze(ctx, pdf)
	if err != nil {
		return ScanResult{}, WrapExtractionError(op, err, "OCR analysis failed")
	}
	if analyzed == nil {
		return ScanResult{}, NewExtractionError(op, ocr.ErrOCRFailed, "empty OCR response")
	}

	return l.rebuild(analyzed.Pages, doc.Pages()), nil
}

// rebuild pairs OCR pages with PDF pages in order. Pages beyond the shorter
// of the two lists are ignored.
func (l Layout) rebuild(ocrPages []ocr.Page, pdfPages []Page) ScanResult {
	const op = "ExtractScan"

	var result ScanResult
	n := min(len(ocrPages), len(pdfPages))
	for i := 0; i < n; i++ {
		text, err := l.rebuildPage(result.Text, ocrPages[i], pdfPages[i])
		if err != nil {
			result.PageErrors = append(result.PageErrors, NewPageError(op, pdfPages[i].Index(), err, ""))
			continue
		}
		result.Text = text
	}
	return result
}

// rebuildPage appends the accepted lines of one page to text.
func (l Layout) rebuildPage(text string, ocrPage ocr.Page, pdfPage Page) (string, error) {
	width, height := pdfPage.Size()
	if ocrPage.Width <= 0 || ocrPage.Height <= 0 {
		return text, fmt.Errorf("%w: OCR page has no dimensions", ErrInsufficientData)
	}
	sx, sy := width/ocrPage.Width, height/ocrPage.Height

	lineHeight, ok := l.lineHeight(ocrPage.Lines, sy)
	if !ok {
		return text, fmt.Errorf("%w: no recognized lines", ErrInsufficientData)
	}

	clip := l.ClipFor(pdfPage.Index(), width, height)

	type placed struct {
		box     Rect
		content string
	}
	lines := make([]placed, 0, len(ocrPage.Lines))
	for _, line := range ocrPage.Lines {
		x0, y0, x1, y1 := line.Bounds()
		lines = append(lines, placed{box: Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}, content: line.Content})
	}
	// Top to bottom, then left to right, in native coordinates.
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].box.Y0 != lines[j].box.Y0 {
			return lines[i].box.Y0 < lines[j].box.Y0
		}
		return lines[i].box.X0 < lines[j].box.X0
	})

	var prev prevBox
	for _, line := range lines {
		box := line.box.Scale(sx, sy)
		same := l.sameLine(prev, box.Y0, box.Y1, lineHeight)
		if !clip.Contains(box) {
			continue
		}
		text = appendLine(text, line.content, same)
		prev = prevBox{y0: box.Y0, y1: box.Y1, set: true}
	}
	return text, nil
}

// Package ocr provides OCR (Optical Character Recognition) backends that turn
// PDF bytes into per-page recognized lines with positional geometry.
//
// Every backend returns the same AnalyzeResult shape: ordered pages with their
// width and height in the engine's native unit, and ordered lines with a
// bounding polygon in that same unit plus the recognized text.
//
// Backends:
//   - DocumentAIClient: Google Document AI OCR processor (synchronous, 15 pages)
//   - VisionClient: Google Cloud Vision document text detection (5-page chunks)
//   - TesseractClient: local Tesseract, built with the "tesseract" tag
//
// Required Environment Variables for the Google backends:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID (Document AI only)
//
// Clients are safe for concurrent use. Wrap them with Throttle to respect the
// quota of the remote service when many documents are in flight.
package ocr

import (
	"context"
	"math"
)

// Client analyzes a PDF and returns the recognized lines of every page.
type Client interface {
	Analyze(ctx context.Context, pdf []byte) (*AnalyzeResult, error)
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, pdf []byte) (*AnalyzeResult, error)

// Analyze calls f.
func (f ClientFunc) Analyze(ctx context.Context, pdf []byte) (*AnalyzeResult, error) {
	return f(ctx, pdf)
}

// AnalyzeResult is the recognized content of a whole document.
type AnalyzeResult struct {
	// Pages are in document order.
	Pages []Page `json:"pages"`

	// Engine names the backend that produced the result.
	Engine string `json:"engine,omitempty"`
}

// Page is one recognized page.
type Page struct {
	// Number is the 1-based page number reported by the engine.
	Number int `json:"number"`

	// Width and Height are in the engine's native unit (pixels or points).
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Lines are in the engine's emission order.
	Lines []Line `json:"lines"`
}

// Line is one recognized text line.
type Line struct {
	Polygon []Point `json:"polygon"`
	Content string  `json:"content"`
}

// Point is a polygon vertex in the engine's native unit.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds returns the axis-aligned box of the polygon as (x0, y0, x1, y1).
// An empty polygon yields a zero box.
func (l Line) Bounds() (x0, y0, x1, y1 float64) {
	if len(l.Polygon) == 0 {
		return 0, 0, 0, 0
	}
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	for _, p := range l.Polygon {
		x0 = math.Min(x0, p.X)
		y0 = math.Min(y0, p.Y)
		x1 = math.Max(x1, p.X)
		y1 = math.Max(y1, p.Y)
	}
	return x0, y0, x1, y1
}

// Height returns the vertical extent of the polygon.
func (l Line) Height() float64 {
	_, y0, _, y1 := l.Bounds()
	return y1 - y0
}

// RectPolygon builds the clockwise polygon of an axis-aligned box.
func RectPolygon(x0, y0, x1, y1 float64) []Point {
	return []Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

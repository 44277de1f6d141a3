package ocr

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"

	"gazette/internal/logger"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages for synchronous processing
	MaxPagesSync = 5

	engineVision = "vision"
)

// fileAnnotator is the subset of the Vision client used here.
type fileAnnotator interface {
	BatchAnnotateFiles(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error)
	Close() error
}

// VisionClient implements Client using Google Cloud Vision document text
// detection. Documents longer than MaxPagesSync are sent in page chunks.
type VisionClient struct {
	client fileAnnotator
	log    zerolog.Logger
}

// NewVisionClient creates a new client with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionClient(ctx context.Context) (*VisionClient, error) {
	const op = "NewVisionClient"

	clientOptions, hasCredentials := credentialOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, clientOptions...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return newVisionClient(client), nil
}

func newVisionClient(client fileAnnotator) *VisionClient {
	return &VisionClient{
		client: client,
		log:    logger.WithComponent("vision"),
	}
}

// Analyze runs document text detection over every page of the PDF.
func (v *VisionClient) Analyze(ctx context.Context, pdf []byte) (*AnalyzeResult, error) {
	const op = "Analyze"

	if err := validatePDF(op, pdf, MaxFileSizeBytes); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &AnalyzeResult{Engine: engineVision}

	// The first call (no page list) covers pages 1-5 and reports the total
	fileResp, err := v.annotate(ctx, op, pdf, nil)
	if err != nil {
		return nil, err
	}
	total := int(fileResp.GetTotalPages())
	result.Pages = append(result.Pages, visionPages(fileResp)...)

	for first := MaxPagesSync + 1; first <= total; first += MaxPagesSync {
		pages := make([]int32, 0, MaxPagesSync)
		for p := first; p < first+MaxPagesSync && p <= total; p++ {
			pages = append(pages, int32(p))
		}

		fileResp, err := v.annotate(ctx, op, pdf, pages)
		if err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, visionPages(fileResp)...)
	}

	v.log.Debug().
		Int("pages", len(result.Pages)).
		Int("total_pages", total).
		Dur("duration", time.Since(start)).
		Msg("Vision OCR completed")

	return result, nil
}

func (v *VisionClient) annotate(ctx context.Context, op string, pdf []byte, pages []int32) (*visionpb.AnnotateFileResponse, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdf,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{
						Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
					},
				},
				Pages: pages,
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, classifyRPCError(op, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.GetResponses()[0]
	if fileResp.GetError() != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.GetError().GetMessage()))
	}
	return fileResp, nil
}

// visionPages converts one file response. Pages without an annotation are
// kept with zero size so that page numbering stays aligned with the PDF.
func visionPages(fileResp *visionpb.AnnotateFileResponse) []Page {
	var pages []Page
	for i, imgResp := range fileResp.GetResponses() {
		number := int(imgResp.GetContext().GetPageNumber())
		if number == 0 {
			number = i + 1
		}

		out := Page{Number: number}
		annotation := imgResp.GetFullTextAnnotation()
		if annotation != nil && len(annotation.GetPages()) > 0 {
			page := annotation.GetPages()[0]
			out.Width = float64(page.GetWidth())
			out.Height = float64(page.GetHeight())
			out.Lines = visionLines(page)
		}
		pages = append(pages, out)
	}
	return pages
}

// visionLines rebuilds text lines from words, ending a line at the detected
// end-of-line breaks.
func visionLines(page *visionpb.Page) []Line {
	width, height := float64(page.GetWidth()), float64(page.GetHeight())

	var lines []Line
	var cur lineBuilder
	for _, block := range page.GetBlocks() {
		for _, para := range block.GetParagraphs() {
			for _, word := range para.GetWords() {
				cur.extend(word.GetBoundingBox(), width, height)

				eol := false
				for _, sym := range word.GetSymbols() {
					cur.text.WriteString(sym.GetText())
					switch sym.GetProperty().GetDetectedBreak().GetType() {
					case visionpb.TextAnnotation_DetectedBreak_SPACE,
						visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
						cur.text.WriteByte(' ')
					case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
						cur.text.WriteByte('-')
						eol = true
					case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
						visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
						eol = true
					}
				}
				if eol {
					lines = cur.flush(lines)
				}
			}
			lines = cur.flush(lines)
		}
	}
	return lines
}

type lineBuilder struct {
	text           strings.Builder
	x0, y0, x1, y1 float64
	set            bool
}

func (b *lineBuilder) extend(poly *visionpb.BoundingPoly, width, height float64) {
	var points []Point
	if vertices := poly.GetVertices(); len(vertices) > 0 {
		for _, v := range vertices {
			points = append(points, Point{X: float64(v.GetX()), Y: float64(v.GetY())})
		}
	} else {
		for _, v := range poly.GetNormalizedVertices() {
			points = append(points, Point{X: float64(v.GetX()) * width, Y: float64(v.GetY()) * height})
		}
	}
	if len(points) == 0 {
		return
	}

	x0, y0, x1, y1 := Line{Polygon: points}.Bounds()
	if !b.set {
		b.x0, b.y0, b.x1, b.y1 = x0, y0, x1, y1
		b.set = true
		return
	}
	b.x0 = math.Min(b.x0, x0)
	b.y0 = math.Min(b.y0, y0)
	b.x1 = math.Max(b.x1, x1)
	b.y1 = math.Max(b.y1, y1)
}

func (b *lineBuilder) flush(lines []Line) []Line {
	content := strings.TrimSpace(b.text.String())
	if content != "" && b.set {
		lines = append(lines, Line{
			Polygon: RectPolygon(b.x0, b.y0, b.x1, b.y1),
			Content: content,
		})
	}
	b.text.Reset()
	b.set = false
	return lines
}

// Close closes the underlying Vision client.
func (v *VisionClient) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

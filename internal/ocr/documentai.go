package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"gazette/internal/logger"
)

const (
	// MaxDocumentSizeBytes is the maximum document size for online processing (20MB)
	MaxDocumentSizeBytes = 20 * 1024 * 1024

	engineDocumentAI = "documentai"
)

// DocumentAIConfig holds configuration for Google Document AI processing.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	// Should match where the OCR processor is created.
	Location string

	// ProcessorID is the ID of a Document OCR processor.
	ProcessorID string

	// ProcessorVersion specifies a particular processor version.
	// If empty, uses the default version.
	ProcessorVersion string

	// Timeout is the maximum time to wait for one document.
	// Default: 120 seconds.
	Timeout time.Duration
}

// documentProcessor is the subset of the Document AI client used here.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIClient implements Client using a Google Document AI OCR processor.
type DocumentAIClient struct {
	client documentProcessor
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIClient creates a client with credentials from the environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS, or
// Application Default Credentials.
func NewDocumentAIClient(ctx context.Context, config DocumentAIConfig) (*DocumentAIClient, error) {
	const op = "NewDocumentAIClient"

	if config.ProjectID == "" {
		return nil, WrapOCRError(op, ErrInvalidConfiguration, "project ID is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapOCRError(op, ErrInvalidConfiguration, "processor ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	clientOptions, hasCredentials := credentialOptions()

	// The "us" location is served by the global endpoint
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return newDocumentAIClient(client, config), nil
}

func newDocumentAIClient(client documentProcessor, config DocumentAIConfig) *DocumentAIClient {
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	return &DocumentAIClient{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// Analyze sends the PDF to the OCR processor and returns its lines.
func (c *DocumentAIClient) Analyze(ctx context.Context, pdf []byte) (*AnalyzeResult, error) {
	const op = "Analyze"

	if err := validatePDF(op, pdf, MaxDocumentSizeBytes); err != nil {
		return nil, err
	}

	processCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: c.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdf,
				MimeType: "application/pdf",
			},
		},
	}

	start := time.Now()
	resp, err := c.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, classifyRPCError(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "no document in response")
	}

	result := documentToResult(resp.GetDocument())
	c.log.Debug().
		Int("pages", len(result.Pages)).
		Dur("duration", time.Since(start)).
		Msg("Document AI OCR completed")

	return result, nil
}

// processorName constructs the full processor resource name.
func (c *DocumentAIClient) processorName() string {
	if c.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			c.config.ProjectID, c.config.Location, c.config.ProcessorID, c.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		c.config.ProjectID, c.config.Location, c.config.ProcessorID)
}

// Close closes the underlying Document AI client.
func (c *DocumentAIClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// documentToResult converts the Document AI page/line tree.
func documentToResult(doc *documentaipb.Document) *AnalyzeResult {
	result := &AnalyzeResult{Engine: engineDocumentAI}
	text := []rune(doc.GetText())
	for i, page := range doc.GetPages() {
		width := float64(page.GetDimension().GetWidth())
		height := float64(page.GetDimension().GetHeight())

		number := int(page.GetPageNumber())
		if number == 0 {
			number = i + 1
		}

		out := Page{Number: number, Width: width, Height: height}
		for _, line := range page.GetLines() {
			layout := line.GetLayout()
			polygon := polygonFromDocumentAI(layout.GetBoundingPoly(), width, height)
			if len(polygon) == 0 {
				continue
			}
			out.Lines = append(out.Lines, Line{
				Polygon: polygon,
				Content: anchorText(layout.GetTextAnchor(), text),
			})
		}
		result.Pages = append(result.Pages, out)
	}
	return result
}

// polygonFromDocumentAI prefers pixel vertices and falls back to normalized
// vertices scaled by the page dimension.
func polygonFromDocumentAI(poly *documentaipb.BoundingPoly, width, height float64) []Point {
	if vertices := poly.GetVertices(); len(vertices) > 0 {
		points := make([]Point, 0, len(vertices))
		for _, v := range vertices {
			points = append(points, Point{X: float64(v.GetX()), Y: float64(v.GetY())})
		}
		return points
	}

	normalized := poly.GetNormalizedVertices()
	points := make([]Point, 0, len(normalized))
	for _, v := range normalized {
		points = append(points, Point{X: float64(v.GetX()) * width, Y: float64(v.GetY()) * height})
	}
	return points
}

// anchorText resolves the text segments of a layout against the document text.
// Segment indexes count code points, not bytes.
func anchorText(anchor *documentaipb.Document_TextAnchor, text []rune) string {
	if anchor == nil {
		return ""
	}
	if anchor.GetContent() != "" {
		return strings.TrimSpace(anchor.GetContent())
	}

	var b strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if start < 0 || end > int64(len(text)) || start >= end {
			continue
		}
		b.WriteString(string(text[start:end]))
	}
	return strings.TrimSpace(b.String())
}

package ocr

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeProcessor struct {
	resp *documentaipb.ProcessResponse
	err  error
	req  *documentaipb.ProcessRequest
}

func (f *fakeProcessor) ProcessDocument(_ context.Context, req *documentaipb.ProcessRequest, _ ...gax.CallOption) (*documentaipb.ProcessResponse, error) {
	f.req = req
	return f.resp, f.err
}

func (f *fakeProcessor) Close() error { return nil }

var minimalPDF = []byte("%PDF-1.4\n%%EOF\n")

func TestDocumentAIAnalyzeConvertsLines(t *testing.T) {
	text := "Nommé\nbestuurder\n"
	fake := &fakeProcessor{resp: &documentaipb.ProcessResponse{
		Document: &documentaipb.Document{
			Text: text,
			Pages: []*documentaipb.Document_Page{{
				PageNumber: 1,
				Dimension:  &documentaipb.Document_Page_Dimension{Width: 1000, Height: 2000},
				Lines: []*documentaipb.Document_Page_Line{
					{Layout: &documentaipb.Document_Page_Layout{
						TextAnchor: &documentaipb.Document_TextAnchor{
							TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 0, EndIndex: 6}},
						},
						BoundingPoly: &documentaipb.BoundingPoly{
							Vertices: []*documentaipb.Vertex{{X: 100, Y: 200}, {X: 400, Y: 200}, {X: 400, Y: 230}, {X: 100, Y: 230}},
						},
					}},
					{Layout: &documentaipb.Document_Page_Layout{
						TextAnchor: &documentaipb.Document_TextAnchor{
							TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: 6, EndIndex: 17}},
						},
						BoundingPoly: &documentaipb.BoundingPoly{
							NormalizedVertices: []*documentaipb.NormalizedVertex{{X: 0.125, Y: 0.25}, {X: 0.5, Y: 0.25}, {X: 0.5, Y: 0.5}, {X: 0.125, Y: 0.5}},
						},
					}},
				},
			}},
		},
	}}

	client := newDocumentAIClient(fake, DocumentAIConfig{ProjectID: "p", Location: "eu", ProcessorID: "proc"})
	result, err := client.Analyze(context.Background(), minimalPDF)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got, want := fake.req.GetName(), "projects/p/locations/eu/processors/proc"; got != want {
		t.Errorf("processor name = %q, want %q", got, want)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}
	page := result.Pages[0]
	if page.Width != 1000 || page.Height != 2000 {
		t.Errorf("page size = %vx%v", page.Width, page.Height)
	}
	if len(page.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(page.Lines))
	}
	if page.Lines[0].Content != "Nommé" || page.Lines[1].Content != "bestuurder" {
		t.Errorf("unexpected line text %q / %q", page.Lines[0].Content, page.Lines[1].Content)
	}
	if _, y0, _, y1 := page.Lines[0].Bounds(); y0 != 200 || y1 != 230 {
		t.Errorf("pixel vertices bounds y = %v..%v", y0, y1)
	}
	if x0, y0, x1, y1 := page.Lines[1].Bounds(); x0 != 125 || y0 != 500 || x1 != 500 || y1 != 1000 {
		t.Errorf("normalized vertices bounds = %v,%v,%v,%v", x0, y0, x1, y1)
	}
}

func TestDocumentAIProcessorVersionName(t *testing.T) {
	client := newDocumentAIClient(&fakeProcessor{}, DocumentAIConfig{
		ProjectID: "p", Location: "us", ProcessorID: "proc", ProcessorVersion: "v2",
	})
	if got, want := client.processorName(), "projects/p/locations/us/processors/proc/processorVersions/v2"; got != want {
		t.Fatalf("processorName = %q, want %q", got, want)
	}
}

func TestDocumentAIErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"quota", status.Error(codes.ResourceExhausted, "quota"), ErrQuotaExceeded},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrTransient},
		{"bad document", status.Error(codes.InvalidArgument, "bad"), ErrInvalidPDF},
		{"auth", status.Error(codes.PermissionDenied, "denied"), ErrMissingCredentials},
		{"canceled", context.Canceled, ErrContextCanceled},
		{"other", errors.New("boom"), ErrOCRFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newDocumentAIClient(&fakeProcessor{err: tt.err}, DocumentAIConfig{ProjectID: "p", ProcessorID: "x"})
			_, err := client.Analyze(context.Background(), minimalPDF)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var ocrErr *OCRError
			if !errors.As(err, &ocrErr) || ocrErr.Op != "Analyze" {
				t.Fatalf("expected OCRError for Analyze, got %#v", err)
			}
		})
	}
}

func TestDocumentAIValidatesInput(t *testing.T) {
	client := newDocumentAIClient(&fakeProcessor{}, DocumentAIConfig{ProjectID: "p", ProcessorID: "x"})
	if _, err := client.Analyze(context.Background(), []byte("hello")); !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}

	big := make([]byte, MaxDocumentSizeBytes+1)
	copy(big, "%PDF")
	if _, err := client.Analyze(context.Background(), big); !errors.Is(err, ErrPDFTooLarge) {
		t.Fatalf("expected ErrPDFTooLarge, got %v", err)
	}
}

func TestNewDocumentAIClientRequiresProcessor(t *testing.T) {
	_, err := NewDocumentAIClient(context.Background(), DocumentAIConfig{ProjectID: "p"})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

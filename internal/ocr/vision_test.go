package ocr

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
)

type fakeAnnotator struct {
	totalPages int32
	calls      [][]int32
	fileErr    *statuspb.Status
}

func (f *fakeAnnotator) BatchAnnotateFiles(_ context.Context, req *visionpb.BatchAnnotateFilesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error) {
	pages := req.GetRequests()[0].GetPages()
	f.calls = append(f.calls, pages)

	if len(pages) == 0 {
		for p := int32(1); p <= MaxPagesSync && p <= f.totalPages; p++ {
			pages = append(pages, p)
		}
	}

	fileResp := &visionpb.AnnotateFileResponse{TotalPages: f.totalPages, Error: f.fileErr}
	for _, p := range pages {
		fileResp.Responses = append(fileResp.Responses, &visionpb.AnnotateImageResponse{
			Context:            &visionpb.ImageAnnotationContext{PageNumber: p},
			FullTextAnnotation: &visionpb.TextAnnotation{Pages: []*visionpb.Page{visionPage()}},
		})
	}
	return &visionpb.BatchAnnotateFilesResponse{Responses: []*visionpb.AnnotateFileResponse{fileResp}}, nil
}

func (f *fakeAnnotator) Close() error { return nil }

func word(text string, x0, y0, x1, y1 int32, last visionpb.TextAnnotation_DetectedBreak_BreakType) *visionpb.Word {
	w := &visionpb.Word{
		BoundingBox: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}},
	}
	for i, r := range text {
		sym := &visionpb.Symbol{Text: string(r)}
		if i == len(text)-1 && last != visionpb.TextAnnotation_DetectedBreak_UNKNOWN {
			sym.Property = &visionpb.TextAnnotation_TextProperty{
				DetectedBreak: &visionpb.TextAnnotation_DetectedBreak{Type: last},
			}
		}
		w.Symbols = append(w.Symbols, sym)
	}
	return w
}

// visionPage holds two lines: "Benoeming van" and "bestuur-" which wraps.
func visionPage() *visionpb.Page {
	return &visionpb.Page{
		Width:  1000,
		Height: 2000,
		Blocks: []*visionpb.Block{{
			Paragraphs: []*visionpb.Paragraph{{
				Words: []*visionpb.Word{
					word("Benoeming", 100, 200, 300, 230, visionpb.TextAnnotation_DetectedBreak_SPACE),
					word("van", 310, 198, 360, 231, visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE),
					word("bestuur", 100, 240, 250, 270, visionpb.TextAnnotation_DetectedBreak_HYPHEN),
				},
			}},
		}},
	}
}

func TestVisionAnalyzeChunksPages(t *testing.T) {
	fake := &fakeAnnotator{totalPages: 12}
	client := newVisionClient(fake)

	result, err := client.Analyze(context.Background(), minimalPDF)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(fake.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(fake.calls))
	}
	if fake.calls[0] != nil {
		t.Errorf("first call should not list pages, got %v", fake.calls[0])
	}
	if got := fake.calls[2]; len(got) != 2 || got[0] != 11 || got[1] != 12 {
		t.Errorf("last chunk = %v, want [11 12]", got)
	}
	if len(result.Pages) != 12 {
		t.Fatalf("expected 12 pages, got %d", len(result.Pages))
	}
	for i, p := range result.Pages {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i, p.Number)
		}
	}
	if result.Engine != "vision" {
		t.Errorf("engine = %q", result.Engine)
	}
}

func TestVisionLinesFromBreaks(t *testing.T) {
	lines := visionLines(visionPage())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Content != "Benoeming van" {
		t.Errorf("line 0 = %q", lines[0].Content)
	}
	if lines[1].Content != "bestuur-" {
		t.Errorf("line 1 = %q", lines[1].Content)
	}
	if x0, y0, x1, y1 := lines[0].Bounds(); x0 != 100 || y0 != 198 || x1 != 360 || y1 != 231 {
		t.Errorf("line 0 bounds = %v,%v,%v,%v", x0, y0, x1, y1)
	}
}

func TestVisionFileError(t *testing.T) {
	fake := &fakeAnnotator{totalPages: 1, fileErr: &statuspb.Status{Code: 3, Message: "bad file"}}
	_, err := newVisionClient(fake).Analyze(context.Background(), minimalPDF)
	if !errors.Is(err, ErrOCRFailed) {
		t.Fatalf("expected ErrOCRFailed, got %v", err)
	}
}

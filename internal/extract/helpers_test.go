package extract

import (
	"context"
	"strings"

	"gazette/internal/ocr"
)

// item is embedded text at an absolute position.
type item struct {
	rect Rect
	text string
}

type fakePage struct {
	index         int
	width, height float64
	items         []item
}

func (p *fakePage) Index() int               { return p.index }
func (p *fakePage) Size() (float64, float64) { return p.width, p.height }

func (p *fakePage) TextInRect(r Rect) string {
	var parts []string
	for _, it := range p.items {
		if r.Intersects(it.rect) {
			parts = append(parts, it.text)
		}
	}
	return strings.Join(parts, "\n")
}

type fakeDoc struct {
	pages []Page
}

func (d *fakeDoc) Pages() []Page          { return d.pages }
func (d *fakeDoc) Bytes() ([]byte, error) { return []byte("%PDF-1.4"), nil }

// newDoc builds a document of n pages of 500x1000 points without text.
func newDoc(n int) *fakeDoc {
	doc := &fakeDoc{}
	for i := 0; i < n; i++ {
		doc.pages = append(doc.pages, &fakePage{index: i, width: 500, height: 1000})
	}
	return doc
}

// withText adds embedded text to page index of doc.
func (d *fakeDoc) withText(index int, rect Rect, text string) *fakeDoc {
	p := d.pages[index].(*fakePage)
	p.items = append(p.items, item{rect: rect, text: text})
	return d
}

func line(content string, x0, y0, x1, y1 float64) ocr.Line {
	return ocr.Line{Polygon: ocr.RectPolygon(x0, y0, x1, y1), Content: content}
}

// staticOCR returns the same pages for every document and counts calls.
type staticOCR struct {
	pages []ocr.Page
	err   error
	calls int
}

func (s *staticOCR) Analyze(context.Context, []byte) (*ocr.AnalyzeResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ocr.AnalyzeResult{Pages: s.pages, Engine: "static"}, nil
}

// scanPage is page 0 of a scan at twice the PDF resolution (1000x2000 for a
// 500x1000 point page). In points the first-page region spans x 79.83..475
// and y 204.85..919.5.
func scanPage() ocr.Page {
	return ocr.Page{
		Number: 1,
		Width:  1000,
		Height: 2000,
		Lines: []ocr.Line{
			line("MONITEUR BELGE", 200, 200, 600, 240), // title block, above the region
			line("Art. 1", 200, 600, 600, 640),
			line("Benoeming", 620, 604, 900, 642), // same row as "Art. 1"
			line("bestuurder", 200, 800, 800, 840),
			line("42", 20, 1000, 100, 1040),    // left margin
			line("Rand", 140, 1200, 600, 1240), // straddles the left bound
		},
	}
}

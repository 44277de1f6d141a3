// Package pdfdoc reads PDF text layers with github.com/ledongthuc/pdf and
// exposes them as extract.Document values.
//
// Glyph positions are converted at open time from PDF user space (origin at
// the bottom-left of the media box) to a top-left origin in points, so that
// regions of interest can be applied with the same fractions used for OCR
// output. Page rotation is not applied.
package pdfdoc

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"gazette/internal/extract"
	"gazette/internal/logger"
)

// defaultPageWidth and defaultPageHeight are US Letter, used when a page
// carries no usable box.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Document is an in-memory PDF with its text layer decoded.
type Document struct {
	raw   []byte
	pages []extract.Page
}

// Open reads and decodes the PDF at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return OpenBytes(data)
}

// OpenBytes decodes an in-memory PDF.
func OpenBytes(data []byte) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse PDF: %w", err)
	}

	log := logger.WithComponent("pdfdoc")
	doc := &Document{raw: data}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		doc.pages = append(doc.pages, newPage(len(doc.pages), p, log))
	}
	return doc, nil
}

// Pages returns the pages in document order.
func (d *Document) Pages() []extract.Page {
	return d.pages
}

// Bytes returns the original PDF bytes.
func (d *Document) Bytes() ([]byte, error) {
	return d.raw, nil
}

// Page is one decoded page.
type Page struct {
	index         int
	width, height float64
	glyphs        []glyph
}

// NewPage builds a page from glyphs already in top-left coordinates.
func NewPage(index int, width, height float64, glyphs []Glyph) *Page {
	p := &Page{index: index, width: width, height: height}
	for _, g := range glyphs {
		p.glyphs = append(p.glyphs, glyph(g))
	}
	return p
}

func newPage(index int, p pdf.Page, log zerolog.Logger) *Page {
	x0, y0, x1, y1 := pageBox(p.V)
	page := &Page{index: index, width: x1 - x0, height: y1 - y0}

	texts, err := pageTexts(p)
	if err != nil {
		log.Warn().Err(err).Int("page", index).Msg("Failed to decode text layer")
		return page
	}
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		baseline := y1 - t.Y
		page.glyphs = append(page.glyphs, glyph{
			X0:       t.X - x0,
			X1:       t.X - x0 + t.W,
			Baseline: baseline,
			Size:     t.FontSize,
			Text:     t.S,
		})
	}
	return page
}

// pageTexts reads the content stream. The reader panics on some malformed
// font programs; that only costs this page its text layer.
func pageTexts(p pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode content stream: %v", r)
		}
	}()
	return p.Content().Text, nil
}

// pageBox returns the crop box, falling back to the media box, following
// inheritance through the page tree.
func pageBox(v pdf.Value) (x0, y0, x1, y1 float64) {
	for _, key := range []string{"CropBox", "MediaBox"} {
		for node := v; node.Kind() == pdf.Dict; node = node.Key("Parent") {
			box := node.Key(key)
			if box.Kind() != pdf.Array || box.Len() != 4 {
				continue
			}
			x0, y0 = box.Index(0).Float64(), box.Index(1).Float64()
			x1, y1 = box.Index(2).Float64(), box.Index(3).Float64()
			if x0 > x1 {
				x0, x1 = x1, x0
			}
			if y0 > y1 {
				y0, y1 = y1, y0
			}
			if x1 > x0 && y1 > y0 {
				return x0, y0, x1, y1
			}
		}
	}
	return 0, 0, defaultPageWidth, defaultPageHeight
}

// Index is the 0-based page number.
func (p *Page) Index() int {
	return p.index
}

// Size returns the page width and height in points.
func (p *Page) Size() (float64, float64) {
	return p.width, p.height
}

// TextInRect returns the text of every glyph whose box intersects r,
// reassembled into lines.
func (p *Page) TextInRect(r extract.Rect) string {
	var hits []glyph
	for _, g := range p.glyphs {
		if r.Intersects(g.box()) {
			hits = append(hits, g)
		}
	}
	return assemble(hits)
}

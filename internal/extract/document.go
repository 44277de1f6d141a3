package extract

// Document is an open PDF. Implementations must not change between calls.
type Document interface {
	// Pages returns the pages in document order.
	Pages() []Page

	// Bytes returns the serialized PDF submitted to the OCR engine.
	Bytes() ([]byte, error)
}

// Page is one page of a Document.
type Page interface {
	// Index is the 0-based page number.
	Index() int

	// Size returns the page width and height in points.
	Size() (width, height float64)

	// TextInRect returns the embedded text whose glyphs intersect r.
	// r uses a top-left origin.
	TextInRect(r Rect) string
}

// Opener turns a filesystem path into a Document.
type Opener func(path string) (Document, error)

// Source is either a path or an already open Document.
type Source struct {
	path string
	doc  Document
}

// FromPath returns a Source that is opened on extraction.
func FromPath(path string) Source {
	return Source{path: path}
}

// FromDocument returns a Source wrapping an open Document.
func FromDocument(doc Document) Source {
	return Source{doc: doc}
}

// Name identifies the source in logs and batch results.
func (s Source) Name() string {
	if s.path != "" {
		return s.path
	}
	return "<document>"
}

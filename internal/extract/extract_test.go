package extract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gazette/internal/ocr"
)

// bodyRect is inside the region of interest of every page of a 500x1000 page.
var bodyRect = Rect{X0: 100, Y0: 300, X1: 400, Y1: 320}

func TestExtractDigital(t *testing.T) {
	doc := newDoc(3).
		withText(0, Rect{X0: 100, Y0: 100, X1: 400, Y1: 120}, "title"). // above page 0 region
		withText(0, bodyRect, "first").
		withText(2, bodyRect, "third")

	if got := DefaultLayout().ExtractDigital(doc); got != "first\nthird" {
		t.Fatalf("ExtractDigital = %q", got)
	}
}

func TestExtractDigitalDoesNotCallOCR(t *testing.T) {
	client := &staticOCR{}
	e, err := New(Options{DoOCR: true, OCR: client})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Extract(context.Background(), FromDocument(newDoc(1).withText(0, bodyRect, "text")))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.IsDigital || res.Text != "text" || res.OCRDeclined {
		t.Fatalf("unexpected result %+v", res)
	}
	if client.calls != 0 {
		t.Fatalf("OCR called %d times for a digital document", client.calls)
	}
}

func TestExtractScanFallback(t *testing.T) {
	client := &staticOCR{pages: []ocr.Page{scanPage()}}
	e, err := New(Options{DoOCR: true, OCR: client})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Extract(context.Background(), FromDocument(newDoc(1)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.IsDigital || res.OCRDeclined {
		t.Fatalf("unexpected flags %+v", res)
	}
	if res.Text != "Art. 1\tBenoeming\nbestuurder" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Pages != 1 || client.calls != 1 {
		t.Fatalf("pages=%d calls=%d", res.Pages, client.calls)
	}
}

func TestExtractDeclinedOCR(t *testing.T) {
	client := &staticOCR{pages: []ocr.Page{scanPage()}}
	e, err := New(Options{DoOCR: false, OCR: client})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Extract(context.Background(), FromDocument(newDoc(2)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.OCRDeclined || res.IsDigital || res.Text != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if client.calls != 0 {
		t.Fatal("OCR must not run when declined")
	}
}

func TestExtractScanWithoutClient(t *testing.T) {
	e, err := New(Options{DoOCR: true})
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Extract(context.Background(), FromDocument(newDoc(1)))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	e, err := New(Options{Open: func(string) (Document, error) {
		t.Fatal("opener must not be called for a missing file")
		return nil, nil
	}})
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Extract(context.Background(), FromPath(filepath.Join(t.TempDir(), "nope.pdf")))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) || extractErr.Op != "Extract" {
		t.Fatalf("expected ExtractionError from Extract, got %#v", err)
	}
}

func TestNewRejectsInvalidLayout(t *testing.T) {
	layout := DefaultLayout()
	layout.OtherPages = Region{Left: 0.5, Top: 0.5, Right: 0.5, Bottom: 0.9}
	if _, err := New(Options{Layout: layout}); !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	e, err := New(Options{DoOCR: true, OCR: &staticOCR{pages: []ocr.Page{scanPage()}}})
	if err != nil {
		t.Fatal(err)
	}
	doc := newDoc(1)
	first, err := e.Extract(context.Background(), FromDocument(doc))
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Extract(context.Background(), FromDocument(doc))
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != second.Text || first.IsDigital != second.IsDigital {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

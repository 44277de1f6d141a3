package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"gazette/pkg/models"
)

func TestLoadPublication(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "20039943.pdf")

	pub, err := loadPublication(pdf)
	if err != nil || pub != nil {
		t.Fatalf("missing metadata: got %v, %v", pub, err)
	}

	meta := `{"vat":"0123456789","publication_id":"20039943","publication_date":"2020-03-16",` +
		`"publication_meta":{"pubid":"20039943"},"file_url":"https://www.ejustice.just.fgov.be/tsv_pdf/2020/03/16/20039943.pdf"}`
	if err := os.WriteFile(filepath.Join(dir, "20039943.meta.json"), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}
	pub, err = loadPublication(pdf)
	if err != nil {
		t.Fatalf("loadPublication: %v", err)
	}
	if pub.VAT != "0123456789" || pub.PubID() != "20039943" {
		t.Fatalf("unexpected publication %+v", pub)
	}
}

func TestWriteExtractions(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()

	extractions := []models.Extraction{
		{
			Source: filepath.Join(root, "a", "20039943.pdf"),
			Text:   "Benoeming",
			Publication: &models.Publication{
				VAT: "0123456789", PublicationID: "20039943", PublicationDate: "2020-03-16",
				Meta:    map[string]any{"pubid": "20039943"},
				FileURL: "https://www.ejustice.just.fgov.be/tsv_pdf/2020/03/16/20039943.pdf",
			},
		},
		{Source: filepath.Join(root, "b", "scan.pdf"), OCRDeclined: true},
	}

	written, err := writeExtractions(out, root, extractions, zerolog.Nop())
	if err != nil {
		t.Fatalf("writeExtractions: %v", err)
	}
	if written != 2 {
		t.Fatalf("written = %d, want 2", written)
	}

	for _, p := range []string{
		filepath.Join(out, "2020", "03", "16", "20039943.json"),
		filepath.Join(out, "b", "scan.json"),
		filepath.Join(out, "meta", "0123456789", "2020", "3", "16", "20039943.json"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(out, "2020", "03", "16", "20039943.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got models.Extraction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Text != "Benoeming" || got.Publication == nil || got.Publication.VAT != "0123456789" {
		t.Fatalf("unexpected stored extraction %+v", got)
	}
}

func TestFindPDFFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.PDF", "c.txt", filepath.Join("sub", "d.pdf")} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("%PDF"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := findPDFFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("found %v, want 3 PDFs", files)
	}
}

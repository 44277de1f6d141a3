package sheets

import (
	"strings"
	"testing"
	"time"

	"gazette/pkg/models"
)

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	if err != nil {
		t.Fatal(err)
	}
	if id != "1AbC-d_9" {
		t.Fatalf("id = %q", id)
	}
	if _, err := extractSpreadsheetID("https://example.org/sheet"); err == nil {
		t.Fatal("expected error for non-sheets URL")
	}
}

func TestToRows(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := toRows([]models.Extraction{
		{
			Source:       "a.pdf",
			Publication:  &models.Publication{VAT: "0123", PublicationID: "99", PublicationDate: "2020-03-16"},
			Text:         "Benoeming\tbestuurder",
			Pages:        3,
			SkippedPages: []int{0, 2},
			DurationMS:   120,
			ExtractedAt:  at,
		},
		{Source: "b.pdf", OCRDeclined: true, Pages: 1},
		{Source: "c.pdf", Error: "not found"},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Method != "ocr" || first.VAT != "0123" || first.PublicationID != "99" || first.SkippedPages != "0,2" {
		t.Errorf("unexpected first row %+v", first)
	}
	if first.Characters != 20 || first.ExtractedAt != "2024-05-01T10:00:00Z" {
		t.Errorf("unexpected first row %+v", first)
	}
	if rows[1].Method != "declined" || rows[2].Method != "failed" || rows[2].Error != "not found" {
		t.Errorf("unexpected methods %q %q", rows[1].Method, rows[2].Method)
	}
	if got := len(first.values()); got != columnCount || got != len(headers) {
		t.Errorf("row has %d values, want %d", got, columnCount)
	}
}

func TestTruncateLongText(t *testing.T) {
	long := strings.Repeat("é", maxCellRunes+10)
	rows := toRows([]models.Extraction{{Text: long}})
	if got := len([]rune(rows[0].Text)); got != maxCellRunes {
		t.Fatalf("text has %d runes, want %d", got, maxCellRunes)
	}
	if rows[0].Characters != maxCellRunes+10 {
		t.Fatalf("characters = %d", rows[0].Characters)
	}
}

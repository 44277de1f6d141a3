package models

import (
	"encoding/json"
	"testing"
)

func TestPublicationMetaPath(t *testing.T) {
	tests := []struct {
		name string
		pub  Publication
		want string
	}{
		{
			name: "pubid from metadata",
			pub: Publication{
				VAT: "0123456789", PublicationID: "x", PublicationDate: "2020-03-06",
				Meta: map[string]any{"pubid": "20039943"},
			},
			want: "0123456789/2020/3/6/20039943.json",
		},
		{
			name: "fallback to publication id",
			pub:  Publication{VAT: "0123456789", PublicationID: "20123456", PublicationDate: "2021-11-25"},
			want: "0123456789/2021/11/25/20123456.json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pub.MetaPath()
			if err != nil {
				t.Fatalf("MetaPath: %v", err)
			}
			if got != tt.want {
				t.Fatalf("MetaPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublicationMetaPathErrors(t *testing.T) {
	if _, err := (Publication{PublicationID: "1", PublicationDate: "2020-01-01"}).MetaPath(); err == nil {
		t.Error("expected error without VAT")
	}
	if _, err := (Publication{VAT: "1", PublicationID: "1", PublicationDate: "01/02/2020"}).MetaPath(); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestPublicationJSONNumericPubID(t *testing.T) {
	var pub Publication
	data := `{"vat":"0123","publication_id":"a","publication_date":"2020-03-16","publication_meta":{"pubid":20039943},"file_url":""}`
	if err := json.Unmarshal([]byte(data), &pub); err != nil {
		t.Fatal(err)
	}
	if got := pub.PubID(); got != "20039943" {
		t.Fatalf("PubID = %q", got)
	}
}

func TestFilePathFromURL(t *testing.T) {
	got, err := FilePathFromURL("https://www.ejustice.just.fgov.be/tsv_pdf/2020/03/16/20039943.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/2020/03/16/20039943.pdf" {
		t.Fatalf("FilePathFromURL = %q", got)
	}

	if _, err := FilePathFromURL("https://example.org"); err == nil {
		t.Fatal("expected error for URL without path")
	}
}

func TestExtractionMethod(t *testing.T) {
	tests := map[string]Extraction{
		"digital":  {IsDigital: true},
		"ocr":      {},
		"declined": {OCRDeclined: true},
		"failed":   {Error: "boom", IsDigital: true},
	}
	for want, e := range tests {
		if got := e.Method(); got != want {
			t.Errorf("Method() = %q, want %q", got, want)
		}
	}
}

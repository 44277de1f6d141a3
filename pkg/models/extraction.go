package models

import "time"

// Extraction is the stored outcome of extracting one publication PDF.
type Extraction struct {
	// Source is the PDF path the text was read from.
	Source string `json:"source"`

	// Publication is set when metadata accompanied the PDF.
	Publication *Publication `json:"publication,omitempty"`

	Text         string `json:"text"`
	IsDigital    bool   `json:"is_digital"`
	OCRDeclined  bool   `json:"ocr_declined"`
	Pages        int    `json:"pages"`
	SkippedPages []int  `json:"skipped_pages,omitempty"`

	// Error holds the failure message when extraction did not complete.
	Error string `json:"error,omitempty"`

	DurationMS  int64     `json:"duration_ms"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Method describes how the text was obtained.
func (e Extraction) Method() string {
	switch {
	case e.Error != "":
		return "failed"
	case e.IsDigital:
		return "digital"
	case e.OCRDeclined:
		return "declined"
	default:
		return "ocr"
	}
}

package models

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// PublicationDateLayout is the date format used by the gazette portal.
const PublicationDateLayout = "2006-01-02"

// Publication is one gazette publication of a legal entity.
type Publication struct {
	VAT             string         `json:"vat"`              // VAT number the publication belongs to
	PublicationID   string         `json:"publication_id"`   // Portal identifier of the publication
	PublicationDate string         `json:"publication_date"` // Date posted, YYYY-MM-DD
	Meta            map[string]any `json:"publication_meta"` // Metadata as listed by the portal
	FileURL         string         `json:"file_url"`         // URL of the PDF
}

// Date parses PublicationDate.
func (p Publication) Date() (time.Time, error) {
	d, err := time.Parse(PublicationDateLayout, p.PublicationDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("publication %s: invalid date %q: %w", p.PublicationID, p.PublicationDate, err)
	}
	return d, nil
}

// PubID returns the "pubid" metadata entry, falling back to PublicationID.
func (p Publication) PubID() string {
	switch v := p.Meta["pubid"].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return p.PublicationID
}

// MetaPath returns the storage key of the publication metadata:
// <vat>/<year>/<month>/<day>/<pubid>.json, month and day without padding.
func (p Publication) MetaPath() (string, error) {
	if p.VAT == "" {
		return "", fmt.Errorf("publication %s: missing VAT number", p.PublicationID)
	}
	d, err := p.Date()
	if err != nil {
		return "", err
	}
	id := p.PubID()
	if id == "" {
		return "", fmt.Errorf("publication for %s: missing publication id", p.VAT)
	}
	return path.Join(p.VAT, strconv.Itoa(d.Year()), strconv.Itoa(int(d.Month())), strconv.Itoa(d.Day()), id+".json"), nil
}

// FilePathFromURL returns the relative store path of a downloaded PDF:
// the URL path with the "/tsv_pdf" prefix removed.
//
//	https://www.ejustice.just.fgov.be/tsv_pdf/2020/03/16/20039943.pdf -> /2020/03/16/20039943.pdf
func FilePathFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse file URL: %w", err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file URL %q has no path", rawURL)
	}
	return strings.Replace(u.Path, "/tsv_pdf", "", 1), nil
}

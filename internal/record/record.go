// Package record defines the core domain type for harvested bibliographic records.
package record

import "strings"

// Record represents a single bibliographic record harvested from a scholarly
// database. Missing string fields are empty; missing numeric fields are zero.
type Record struct {
	// Provenance
	Source string `json:"source"` // openalex, crossref, pubmed, scopus, manual
	ID     string `json:"id"`     // source-native identifier, unique within the corpus

	// Identifiers
	DOI  string `json:"doi,omitempty"`  // normalized: trimmed, lowercased, no doi.org prefix
	PMID string `json:"pmid,omitempty"` // digit string

	// Metadata
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Authors  string `json:"authors,omitempty"` // "Last, F.; Last, F."
	Journal  string `json:"journal,omitempty"`
	Year     int    `json:"year,omitempty"` // 0 if unknown
	DocType  string `json:"doc_type,omitempty"`
	Lang     string `json:"lang,omitempty"` // ISO 639-1

	// Access
	URL      string `json:"url,omitempty"`
	PDFURL   string `json:"pdf_url,omitempty"`
	PDFPath  string `json:"pdf_path,omitempty"` // local file attached by link
	OAStatus string `json:"oa_status,omitempty"`
	CitedBy  int    `json:"cited_by,omitempty"`

	// TitleNorm caches the normalized title used for fuzzy matching.
	// Derived on demand, never persisted.
	TitleNorm string `json:"-"`
}

// Exact-match key kinds understood by Key.
const (
	KeyDOI      = "doi"
	KeyPMID     = "pmid"
	KeySourceID = "source-id"
)

// Key returns the record's value for an exact-match key kind, lowercased and
// trimmed so comparisons are case-insensitive. Returns "" for a missing value
// or an unknown kind; empty keys never participate in matching.
func (r *Record) Key(kind string) string {
	switch kind {
	case KeyDOI:
		return strings.ToLower(strings.TrimSpace(r.DOI))
	case KeyPMID:
		return strings.TrimSpace(r.PMID)
	case KeySourceID:
		if r.Source == "" || r.ID == "" {
			return ""
		}
		return strings.ToLower(r.Source + ":" + r.ID)
	default:
		return ""
	}
}

// HasDOI reports whether the record carries a DOI.
func (r *Record) HasDOI() bool { return strings.TrimSpace(r.DOI) != "" }

// HasPMID reports whether the record carries a PubMed ID.
func (r *Record) HasPMID() bool { return strings.TrimSpace(r.PMID) != "" }

// HasYear reports whether the publication year is known.
func (r *Record) HasYear() bool { return r.Year != 0 }

// Package export converts corpus records to outbound formats.
package export

import (
	"fmt"
	"strings"

	"github.com/litsift/litsift/internal/record"
)

// risAbstractMaxLen caps exported abstracts; reference managers truncate
// long AB fields anyway.
const risAbstractMaxLen = 5000

// ToRIS converts a record to an RIS entry for reference-manager import
// (EndNote, Zotero, Mendeley).
func ToRIS(r record.Record) string {
	var lines []string

	lines = append(lines, "TY  - "+risType(r.DocType))

	// Authors (AU tag for each)
	for _, author := range splitAuthors(r.Authors) {
		lines = append(lines, "AU  - "+author)
	}

	lines = append(lines, "TI  - "+r.Title)

	if r.Journal != "" {
		lines = append(lines, "JO  - "+r.Journal)
	}
	if r.Year != 0 {
		lines = append(lines, fmt.Sprintf("PY  - %d", r.Year))
	}
	if r.DOI != "" {
		lines = append(lines, "DO  - "+r.DOI)
	}

	// PMID as accession number
	if r.PMID != "" {
		lines = append(lines, "AN  - "+r.PMID)
	}

	if r.Abstract != "" {
		abstract := r.Abstract
		if len(abstract) > risAbstractMaxLen {
			abstract = abstract[:risAbstractMaxLen] + "..."
		}
		lines = append(lines, "AB  - "+abstract)
	}

	if r.URL != "" {
		lines = append(lines, "UR  - "+r.URL)
	}

	// End of record
	lines = append(lines, "ER  -")

	return strings.Join(lines, "\n")
}

// ToRISList converts multiple records to one RIS document.
func ToRISList(records []record.Record) string {
	var entries []string
	for _, r := range records {
		entries = append(entries, ToRIS(r))
	}
	return strings.Join(entries, "\n")
}

// risType maps a normalized document type to an RIS reference type.
// Reviews, editorials, letters, and case reports all travel as journal
// content; anything unrecognized defaults to JOUR since screening corpora
// are overwhelmingly journal articles.
func risType(docType string) string {
	switch docType {
	case "proceedings-article":
		return "CONF"
	case "book":
		return "BOOK"
	case "book-chapter":
		return "CHAP"
	case "preprint":
		return "UNPB"
	case "thesis":
		return "THES"
	case "report":
		return "RPRT"
	case "dataset":
		return "DATA"
	default:
		return "JOUR"
	}
}

// splitAuthors breaks the stored "Last, F.; Last, F." list into one name
// per AU line.
func splitAuthors(authors string) []string {
	if authors == "" {
		return nil
	}

	var result []string
	for _, a := range strings.Split(authors, ";") {
		a = strings.TrimSpace(a)
		if a != "" {
			result = append(result, a)
		}
	}
	return result
}

package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/record"
)

// CanonicalColumns is the column order harvest exports are expected to use.
// ReadCSV accepts any subset in any order by header name; WriteCSV always
// emits this order.
var CanonicalColumns = []string{
	"source", "id", "doi", "pmid", "title", "abstract", "authors",
	"journal", "year", "doc_type", "lang", "url", "pdf_url",
	"oa_status", "cited_by",
}

// ReadCSV parses a harvest export. The first row must be a header; unknown
// columns are ignored and missing columns read as missing values. A
// malformed year or cited_by degrades to the missing value rather than
// failing the load.
func ReadCSV(r io.Reader) ([]record.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF") // Excel BOM
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []record.Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}

		records = append(records, record.Record{
			Source:   field(row, "source"),
			ID:       field(row, "id"),
			DOI:      field(row, "doi"),
			PMID:     field(row, "pmid"),
			Title:    field(row, "title"),
			Abstract: field(row, "abstract"),
			Authors:  field(row, "authors"),
			Journal:  field(row, "journal"),
			Year:     normalize.Year(field(row, "year")),
			DocType:  field(row, "doc_type"),
			Lang:     field(row, "lang"),
			URL:      field(row, "url"),
			PDFURL:   field(row, "pdf_url"),
			OAStatus: field(row, "oa_status"),
			CitedBy:  parseCount(field(row, "cited_by")),
		})
	}
	return records, nil
}

// parseCount reads a citation count, degrading garbage and negatives to 0.
func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// WriteCSV writes records in the canonical column order. A missing year is
// an empty cell; citation counts are zero-filled.
func WriteCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CanonicalColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range records {
		r := &records[i]
		year := ""
		if r.Year != 0 {
			year = strconv.Itoa(r.Year)
		}
		row := []string{
			r.Source, r.ID, r.DOI, r.PMID, r.Title, r.Abstract, r.Authors,
			r.Journal, year, r.DocType, r.Lang, r.URL, r.PDFURL,
			r.OAStatus, strconv.Itoa(r.CitedBy),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/litsift/litsift/internal/record"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `id, source, doi, pmid, title, abstract, authors,
	journal, year, doc_type, lang, url, pdf_url, pdf_path, oa_status, cited_by`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	// Create schema if needed
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Main records table, rebuilt from the JSONL store
		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			source TEXT,
			doi TEXT,
			pmid TEXT,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			journal TEXT,
			year INTEGER,
			doc_type TEXT,
			lang TEXT,
			url TEXT,
			pdf_url TEXT,
			pdf_path TEXT,
			oa_status TEXT,
			cited_by INTEGER NOT NULL DEFAULT 0
		);

		-- Index for DOI lookups
		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Index for year range filters
		CREATE INDEX IF NOT EXISTS idx_records_year ON records(year);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			id,
			title,
			abstract,
			authors,
			journal
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// The rebuild runs inside one transaction so a failed load never leaves a
// half-populated cache.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	records, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM records_fts"); err != nil {
		return 0, fmt.Errorf("clearing records_fts table: %w", err)
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (
			id, source, doi, pmid, title, abstract, authors,
			journal, year, doc_type, lang, url, pdf_url, pdf_path,
			oa_status, cited_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO records_fts (id, title, abstract, authors, journal)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i := range records {
		r := &records[i]

		_, err = recStmt.Exec(
			r.ID, nullableStringValue(r.Source), nullableStringValue(r.DOI),
			nullableStringValue(r.PMID), nullableStringValue(r.Title),
			nullableStringValue(r.Abstract), nullableStringValue(r.Authors),
			nullableStringValue(r.Journal), nullableInt(r.Year),
			nullableStringValue(r.DocType), nullableStringValue(r.Lang),
			nullableStringValue(r.URL), nullableStringValue(r.PDFURL),
			nullableStringValue(r.PDFPath), nullableStringValue(r.OAStatus),
			r.CitedBy,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", r.ID, err)
		}

		_, err = ftsStmt.Exec(r.ID, r.Title, r.Abstract, r.Authors, r.Journal)
		if err != nil {
			return 0, fmt.Errorf("inserting fts row for %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}

	return len(records), nil
}

// GetByID retrieves a record by its ID.
func (d *DB) GetByID(id string) (*record.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// Search performs a full-text search and returns matching records.
func (d *DB) Search(query string, limit int) ([]record.Record, error) {
	// Escape special FTS5 characters and prepare query
	ftsQuery := prepareFTSQuery(query)

	rows, err := d.db.Query(`
		SELECT `+selectRecordFields+`
		FROM records
		WHERE id IN (SELECT id FROM records_fts WHERE records_fts MATCH ?)
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchFilters contains optional filters for SearchWithFilters.
//
// MAINTAINER NOTE: This filter-based approach works well for ~6-8 filters.
// Consider refactoring if:
//   - This struct exceeds 10 fields
//   - SearchWithFilters exceeds 80 lines
//   - You need complex logic (OR between different field types, negation)
//   - Filter interaction bugs become common
//
// The current approach mixes FTS5 (text search) and SQL WHERE (exact/range).
// Both support OR natively, so adding same-type ORs is straightforward.
type SearchFilters struct {
	Keyword  string   // General keyword search across all indexed fields
	Title    string   // Search in title only (FTS)
	Authors  []string // Author names to search for (AND logic, fuzzy prefix matching)
	Journal  string   // Filter by journal (SQL LIKE, case-insensitive)
	Source   string   // Exact source match (SQL)
	DocType  string   // Exact document type match (SQL)
	YearFrom int      // Minimum publication year (0 = no minimum)
	YearTo   int      // Maximum publication year (0 = no maximum)
	HasPDF   bool     // Only records with a fetched PDF or a known PDF URL
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns records matching ALL specified criteria (AND logic).
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]record.Record, error) {
	var ftsTerms []string
	var args []interface{}

	// Build FTS query parts (text-based searches)
	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}
	for _, author := range filters.Authors {
		if author != "" {
			ftsTerms = append(ftsTerms, "authors:"+prepareAuthorQuery(author))
		}
	}

	// Build the query
	var query string
	if len(ftsTerms) > 0 {
		ftsQuery := strings.Join(ftsTerms, " AND ")
		query = `SELECT ` + selectRecordFields + `
			FROM records
			WHERE id IN (SELECT id FROM records_fts WHERE records_fts MATCH ?)`
		args = append(args, ftsQuery)
	} else {
		query = `SELECT ` + selectRecordFields + ` FROM records WHERE 1=1`
	}

	// SQL-based filters (exact/range matches)
	if filters.Journal != "" {
		query += " AND journal LIKE ?"
		args = append(args, "%"+filters.Journal+"%")
	}
	if filters.Source != "" {
		query += " AND source = ?"
		args = append(args, filters.Source)
	}
	if filters.DocType != "" {
		query += " AND doc_type = ?"
		args = append(args, filters.DocType)
	}
	if filters.YearFrom > 0 {
		query += " AND year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.HasPDF {
		query += " AND ((pdf_path IS NOT NULL AND pdf_path != '') OR (pdf_url IS NOT NULL AND pdf_url != ''))"
	}

	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) to enable fuzzy matching (e.g., "Tim" matches "Timothy").
func prepareAuthorQuery(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return author
	}

	// Split into parts for multi-word names
	parts := strings.Fields(author)
	var terms []string
	for _, part := range parts {
		// Escape special characters and add prefix wildcard
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		// Add * for prefix matching
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// ListAll returns all records, optionally limited.
func (d *DB) ListAll(limit int) ([]record.Record, error) {
	query := `SELECT ` + selectRecordFields + ` FROM records ORDER BY id`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// groupColumns are the columns CountBy may group on.
var groupColumns = map[string]bool{
	"source":    true,
	"doc_type":  true,
	"lang":      true,
	"oa_status": true,
	"year":      true,
}

// CountBy returns record counts grouped by a column value. NULL and empty
// values are counted under the empty string key.
func (d *DB) CountBy(column string) (map[string]int, error) {
	if !groupColumns[column] {
		return nil, fmt.Errorf("unsupported group column: %s", column)
	}

	rows, err := d.db.Query(fmt.Sprintf(
		"SELECT COALESCE(CAST(%s AS TEXT), ''), COUNT(*) FROM records GROUP BY %s",
		column, column))
	if err != nil {
		return nil, fmt.Errorf("counting by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		counts[value] += n
	}
	return counts, rows.Err()
}

// missingColumns are the columns CountMissing may inspect.
var missingColumns = map[string]bool{
	"doi":      true,
	"pmid":     true,
	"abstract": true,
	"doc_type": true,
	"lang":     true,
	"pdf_url":  true,
	"pdf_path": true,
	"year":     true,
}

// CountMissing returns the number of records with a NULL or empty value in
// the given column.
func (d *DB) CountMissing(column string) (int, error) {
	if !missingColumns[column] {
		return 0, fmt.Errorf("unsupported column: %s", column)
	}

	var count int
	err := d.db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*) FROM records WHERE %s IS NULL OR %s = ''",
		column, column)).Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*record.Record, error) {
	var r record.Record
	var source, doi, pmid, title, abstract, authors, journal sql.NullString
	var docType, lang, url, pdfURL, pdfPath, oaStatus sql.NullString
	var year, citedBy sql.NullInt64

	err := s.Scan(
		&r.ID, &source, &doi, &pmid, &title, &abstract, &authors,
		&journal, &year, &docType, &lang, &url, &pdfURL, &pdfPath,
		&oaStatus, &citedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	// Handle nullable fields
	r.Source = source.String
	r.DOI = doi.String
	r.PMID = pmid.String
	r.Title = title.String
	r.Abstract = abstract.String
	r.Authors = authors.String
	r.Journal = journal.String
	r.DocType = docType.String
	r.Lang = lang.String
	r.URL = url.String
	r.PDFURL = pdfURL.String
	r.PDFPath = pdfPath.String
	r.OAStatus = oaStatus.String

	if year.Valid {
		r.Year = int(year.Int64)
	}
	if citedBy.Valid {
		r.CitedBy = int(citedBy.Int64)
	}

	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	var records []record.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableInt converts a count to sql.NullInt64, treating zero as NULL.
func nullableInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// For simple queries, just quote the terms
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		// Escape internal quotes and wrap in quotes
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

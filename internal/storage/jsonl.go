// Package storage persists the screening corpus: JSONL as the canonical
// format, CSV for harvest interchange, and a disposable SQLite cache for
// search.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/litsift/litsift/internal/record"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines
// (1MB per line). Shared across all JSONL file readers.
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all records from a JSONL file. A missing file reads as an
// empty corpus, not an error. Blank lines are skipped; parse errors carry
// the line number.
func ReadAll(path string) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var records []record.Record
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r record.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return records, nil
}

// Append adds a record to the end of a JSONL file.
func Append(path string, r record.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}

// WriteAll replaces the file's content with the given records. The write
// goes to a temp file first and renames into place, so a crash mid-write
// never truncates the corpus.
func WriteAll(path string, records []record.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".records-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing records file: %w", err)
	}
	return nil
}

// FindByDOI searches for a record by DOI.
func FindByDOI(records []record.Record, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i := range records {
		if records[i].DOI == doi {
			return i, true
		}
	}
	return -1, false
}

// FindByPMID searches for a record by PubMed ID.
func FindByPMID(records []record.Record, pmid string) (int, bool) {
	if pmid == "" {
		return -1, false
	}
	for i := range records {
		if records[i].PMID == pmid {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for a record by corpus ID.
func FindByID(records []record.Record, id string) (int, bool) {
	for i := range records {
		if records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// GenerateUniqueID returns an ID that doesn't conflict with existing
// records. If the base ID exists, appends -2, -3, etc.
func GenerateUniqueID(records []record.Record, baseID string) string {
	if _, found := FindByID(records, baseID); !found {
		return baseID
	}

	// Start at 2: baseID is taken, so first duplicate becomes baseID-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseID, i)
		if _, found := FindByID(records, candidate); !found {
			return candidate
		}
	}
}

package export

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/record"
)

// BibTeXIndex indexes the entries of an existing .bib file so appends can
// skip records already present.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps DOI values to citation keys
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasRecord reports whether the record is already in the file. DOI is the
// primary match; the citation key is the fallback for records without one.
func (idx *BibTeXIndex) HasRecord(r record.Record) bool {
	if r.HasDOI() {
		if _, exists := idx.DOIs[normalize.CleanDOI(r.DOI)]; exists {
			return true
		}
	}
	return idx.Keys[BibKey(r)]
}

// Entry start: @type{key,
var bibEntryStartPattern = regexp.MustCompile(`@\w+\{([^,]+),`)

// DOI field: doi = {value} or doi = "value"
var bibDOIFieldPattern = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)

// ParseBibTeXFile builds an index from an existing .bib file. A missing
// file yields an empty index, so first exports need no special casing.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := bibEntryStartPattern.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := bibDOIFieldPattern.FindStringSubmatch(line); len(matches) > 1 {
			doi := normalize.CleanDOI(matches[1])
			if doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// AppendToBibFile appends BibTeX content to a file, creating it if needed.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}

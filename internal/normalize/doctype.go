package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// DocTypeUnknown marks a non-empty document type with no standard mapping.
const DocTypeUnknown = "unknown"

var schemePrefixPattern = regexp.MustCompile(`^https?://[^/]+/`)

// docTypeMap maps source vocabularies onto the standard categories.
// Crossref uses hyphenated types, OpenAlex bare words, BibTeX its own names.
var docTypeMap = map[string]string{
	"journal-article":   "journal-article",
	"article":           "journal-article",
	"research-article":  "journal-article",
	"original-research": "journal-article",

	"review":            "review",
	"review-article":    "review",
	"systematic-review": "review",
	"meta-analysis":     "review",
	"literature-review": "review",

	"proceedings-article": "proceedings-article",
	"conference-paper":    "proceedings-article",
	"conference":          "proceedings-article",
	"inproceedings":       "proceedings-article",

	"book":         "book",
	"book-chapter": "book-chapter",
	"chapter":      "book-chapter",
	"incollection": "book-chapter",

	"preprint":       "preprint",
	"posted-content": "preprint",

	"editorial":   "editorial",
	"letter":      "letter",
	"case-report": "case-report",
	"thesis":      "thesis",
	"report":      "report",
	"dataset":     "dataset",
}

// docTypeKeys holds the map keys in deterministic order for partial matching.
var docTypeKeys = sortedDocTypeKeys()

func sortedDocTypeKeys() []string {
	keys := make([]string, 0, len(docTypeMap))
	for k := range docTypeMap {
		keys = append(keys, k)
	}
	// Longest first so "review-article" wins over "review" on containment.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// DocType normalizes a raw document type to a standard category. Empty input
// stays empty; unrecognized non-empty input maps to DocTypeUnknown. Matching
// tries the exact vocabulary first, then substring containment either way.
func DocType(docType string) string {
	docType = strings.ToLower(strings.TrimSpace(docType))
	if docType == "" {
		return ""
	}
	// OpenAlex ships types as URIs, e.g. https://openalex.org/types/article.
	docType = schemePrefixPattern.ReplaceAllString(docType, "")

	if mapped, ok := docTypeMap[docType]; ok {
		return mapped
	}
	for _, key := range docTypeKeys {
		if strings.Contains(docType, key) || strings.Contains(key, docType) {
			return docTypeMap[key]
		}
	}
	return DocTypeUnknown
}

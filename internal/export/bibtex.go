package export

import (
	"fmt"
	"strings"

	"github.com/litsift/litsift/internal/record"
)

// ToBibTeX converts a record to a BibTeX entry keyed by its corpus ID.
func ToBibTeX(r record.Record) string {
	entryType := bibEntryType(r.DocType)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, BibKey(r))

	if authors := splitAuthors(r.Authors); len(authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(authors, " and "))
	}

	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(r.Title))

	if r.Journal != "" {
		field := "journal"
		if entryType == "inproceedings" {
			field = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", field, escapeLatex(r.Journal))
	}

	if r.Year != 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", r.Year)
	}
	if r.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", r.DOI)
	}
	if r.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", r.URL)
	}
	if r.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(r.Abstract))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple records to one BibTeX document.
func ToBibTeXList(records []record.Record) string {
	var entries []string
	for _, r := range records {
		entries = append(entries, ToBibTeX(r))
	}
	return strings.Join(entries, "\n")
}

// BibKey derives a citation key from the corpus ID. Characters BibTeX
// cannot carry in a key are replaced with dashes.
func BibKey(r record.Record) string {
	return strings.Map(func(c rune) rune {
		switch c {
		case ',', '{', '}', '%', '#', '\\', '"', ' ', '\t':
			return '-'
		}
		return c
	}, r.ID)
}

// bibEntryType maps a normalized document type to a BibTeX entry type.
// Preprints travel as articles, matching how reference managers import
// them; anything unrecognized defaults to article.
func bibEntryType(docType string) string {
	switch docType {
	case "proceedings-article":
		return "inproceedings"
	case "book":
		return "book"
	case "book-chapter":
		return "incollection"
	case "thesis":
		return "phdthesis"
	case "report":
		return "techreport"
	case "dataset":
		return "misc"
	default:
		return "article"
	}
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}

// Package normalize cleans harvested bibliographic fields into the
// standardized form the rest of the pipeline operates on. All functions are
// pure: the same input always produces the same output.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	doiURLPattern     = regexp.MustCompile(`^https?://(dx\.)?doi\.org/`)
	doiPattern        = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
	digitsPattern     = regexp.MustCompile(`^\d+$`)
	authorSepPattern  = regexp.MustCompile(`[;,]\s*`)
	normalAuthorsForm = regexp.MustCompile(`^[^;,]+, (?:\p{Lu}\.)+(?:; [^;,]+, (?:\p{Lu}\.)+)*$`)
)

// Year bounds accepted by Year. Anything outside is treated as missing.
const (
	MinYear = 1900
	MaxYear = 2030
)

// CleanTitle strips HTML tags, collapses whitespace, and trims surrounding
// punctuation from a display title. Internal punctuation is preserved.
func CleanTitle(title string) string {
	title = htmlTagPattern.ReplaceAllString(title, "")
	title = whitespacePattern.ReplaceAllString(title, " ")
	return strings.TrimFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// TitleKey derives the comparison form of a title used by fuzzy matching:
// lowercase, punctuation replaced by spaces, whitespace collapsed, trimmed.
func TitleKey(title string) string {
	title = CleanTitle(title)

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanAbstract strips HTML, collapses whitespace, and drops leading
// "Abstract:"/"Summary:"/"Background:" boilerplate labels.
func CleanAbstract(abstract string) string {
	abstract = htmlTagPattern.ReplaceAllString(abstract, "")
	abstract = strings.TrimSpace(whitespacePattern.ReplaceAllString(abstract, " "))

	for _, label := range []string{"abstract", "summary", "background"} {
		rest, ok := trimLabel(abstract, label)
		if ok {
			abstract = rest
			break
		}
	}
	return strings.TrimSpace(abstract)
}

// trimLabel removes a leading case-insensitive label followed by an optional
// colon. Reports whether anything was trimmed.
func trimLabel(s, label string) (string, bool) {
	if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
		return s, false
	}
	rest := s[len(label):]
	if rest != "" && rest[0] != ':' && rest[0] != ' ' {
		// Label is a prefix of a longer word, e.g. "Abstraction".
		return s, false
	}
	return strings.TrimLeft(rest, ": "), true
}

// CleanAuthors strips HTML, unifies separators to "; ", and trims surrounding
// punctuation from an author string.
func CleanAuthors(authors string) string {
	authors = htmlTagPattern.ReplaceAllString(authors, "")
	authors = authorSepPattern.ReplaceAllString(authors, "; ")
	authors = whitespacePattern.ReplaceAllString(authors, " ")
	return strings.TrimFunc(authors, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// ParseAuthors splits an author string into individual names.
func ParseAuthors(authors string) []string {
	var names []string
	for _, name := range authorSepPattern.Split(CleanAuthors(authors), -1) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Authors normalizes an author string into "Last, F.; Last, F." form.
// Names that cannot be parsed pass through unchanged.
func Authors(authors string) string {
	// Input already in normalized form keeps its commas; splitting on them
	// would tear the names apart.
	if s := strings.TrimSpace(authors); normalAuthorsForm.MatchString(s) {
		return s
	}

	names := ParseAuthors(authors)
	if len(names) == 0 {
		return ""
	}

	normalized := make([]string, 0, len(names))
	for _, name := range names {
		normalized = append(normalized, normalizeName(name))
	}
	return strings.Join(normalized, "; ")
}

// normalizeName converts a single name to "Last, F." form. Handles both
// "First Last" and PubMed-style "Last FM" orderings.
func normalizeName(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}

	last := parts[len(parts)-1]
	if isInitials(last) {
		// "Last FM": surname first, initials last.
		surname := strings.Join(parts[:len(parts)-1], " ")
		return surname + ", " + dotInitials(last)
	}

	// "First Last": surname last, initials from the leading names.
	var b strings.Builder
	for _, first := range parts[:len(parts)-1] {
		r := []rune(first)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteByte('.')
	}
	return last + ", " + b.String()
}

// isInitials reports whether a token looks like bare initials, e.g. "J" or "JK".
func isInitials(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// dotInitials expands "JK" to "J.K.".
func dotInitials(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteByte('.')
	}
	return b.String()
}

// CleanDOI normalizes a DOI: trims, strips doi.org URL and "doi:" prefixes,
// lowercases. Values that do not look like a DOI come back empty so they
// never participate in exact matching.
func CleanDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	doi = doiURLPattern.ReplaceAllString(doi, "")
	doi = strings.TrimSpace(strings.TrimPrefix(doi, "doi:"))
	if !doiPattern.MatchString(doi) {
		return ""
	}
	return doi
}

// CleanPMID normalizes a PubMed ID to a bare digit string, accepting
// "PMID: n" labels and pubmed.ncbi.nlm.nih.gov URLs. Anything else is empty.
func CleanPMID(pmid string) string {
	pmid = strings.ToLower(strings.TrimSpace(pmid))
	pmid = strings.TrimPrefix(pmid, "pmid:")
	for _, prefix := range []string{"https://", "http://"} {
		pmid = strings.TrimPrefix(pmid, prefix)
	}
	pmid = strings.TrimPrefix(pmid, "pubmed.ncbi.nlm.nih.gov/")
	pmid = strings.Trim(strings.TrimSpace(pmid), "/")
	if !digitsPattern.MatchString(pmid) {
		return ""
	}
	return pmid
}

// Year extracts the first plausible four-digit year from a value.
// Returns 0 when no year in [MinYear, MaxYear] is found; malformed input
// degrades to missing, never an error.
func Year(year string) int {
	match := yearPattern.FindString(year)
	if match == "" {
		return 0
	}
	y := 0
	for _, r := range match {
		y = y*10 + int(r-'0')
	}
	if y < MinYear || y > MaxYear {
		return 0
	}
	return y
}

// CleanURL trims a URL and repairs common scheme omissions. Values that do
// not look like URLs come back empty.
func CleanURL(url string) string {
	url = strings.TrimSpace(htmlTagPattern.ReplaceAllString(url, ""))
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if strings.HasPrefix(url, "doi.org/") || strings.HasPrefix(url, "www.") {
		return "https://" + url
	}
	if strings.HasPrefix(url, "10.") && strings.Contains(url, "/") {
		return "https://doi.org/" + url
	}
	return ""
}

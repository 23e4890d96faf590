package normalize

import (
	"strings"

	"github.com/litsift/litsift/internal/record"
)

// Record normalizes every field of a record in place and refreshes its
// cached TitleNorm. Language is detected from title plus abstract only when
// the harvest did not provide one.
func Record(r *record.Record) {
	r.Title = CleanTitle(r.Title)
	r.TitleNorm = TitleKey(r.Title)
	r.Abstract = CleanAbstract(r.Abstract)
	r.Authors = Authors(r.Authors)
	r.DOI = CleanDOI(r.DOI)
	r.PMID = CleanPMID(r.PMID)
	r.DocType = DocType(r.DocType)
	r.URL = CleanURL(r.URL)
	r.PDFURL = CleanURL(r.PDFURL)

	if r.Year < MinYear || r.Year > MaxYear {
		r.Year = 0
	}

	lang := strings.ToLower(strings.TrimSpace(r.Lang))
	if lang == "unknown" {
		lang = ""
	}
	if lang == "" {
		lang = DetectLang(r.Title + " " + r.Abstract)
	}
	r.Lang = lang

	if r.CitedBy < 0 {
		r.CitedBy = 0
	}
}

// TitleKeys fills the cached TitleNorm of each record without touching the
// stored fields. Records loaded from the corpus were normalized at import,
// so matching passes only need the derived key recomputed.
func TitleKeys(records []record.Record) {
	for i := range records {
		records[i].TitleNorm = TitleKey(records[i].Title)
	}
}

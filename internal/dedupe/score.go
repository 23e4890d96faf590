package dedupe

import "github.com/litsift/litsift/internal/record"

// Completeness weights for survivor selection. A direct full-text link
// outranks any combination of the remaining signals (85 points max).
const (
	scorePDFURL        = 100.0
	scoreAbstractCap   = 50.0
	scoreCitationCap   = 30.0
	scoreFieldPresence = 5.0
)

// completeness scores a record's metadata richness. Missing values
// contribute zero.
func completeness(r *record.Record) float64 {
	var score float64
	if r.PDFURL != "" {
		score += scorePDFURL
	}
	if r.Abstract != "" {
		score += min(float64(len(r.Abstract))/10, scoreAbstractCap)
	}
	if r.CitedBy > 0 {
		score += min(float64(r.CitedBy)/10, scoreCitationCap)
	}
	for _, present := range []bool{
		r.Title != "",
		r.Authors != "",
		r.Journal != "",
		r.Year != 0,
		r.DOI != "",
	} {
		if present {
			score += scoreFieldPresence
		}
	}
	return score
}

// ChooseBest returns the index of the most complete record in a duplicate
// group. Group indices must be ascending; ties resolve to the earliest.
func ChooseBest(records []record.Record, group []int) int {
	best := group[0]
	bestScore := completeness(&records[best])
	for _, idx := range group[1:] {
		if score := completeness(&records[idx]); score > bestScore {
			best, bestScore = idx, score
		}
	}
	return best
}

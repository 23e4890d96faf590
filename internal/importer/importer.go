// Package importer parses harvest exports into records ready for the
// corpus: CSV from the harvest scripts and JSONL in the corpus format.
package importer

import (
	"io"

	"github.com/google/uuid"
	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/record"
	"github.com/litsift/litsift/internal/storage"
)

// Merge action kinds returned by Classify.
const (
	ActionNew    = "new"
	ActionUpdate = "update"
)

// FromCSV parses a harvest CSV export. Records without a source column are
// tagged with the given source, then normalized and assigned IDs.
func FromCSV(r io.Reader, source string) ([]record.Record, error) {
	records, err := storage.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	Prepare(records, source)
	return records, nil
}

// Prepare makes parsed records corpus-ready in place: fills a missing
// Source, normalizes every field, and assigns an ID where the harvest
// provided none.
func Prepare(records []record.Record, source string) {
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = source
		}
		normalize.Record(&records[i])
		if records[i].ID == "" {
			records[i].ID = assignID(&records[i])
		}
	}
}

// assignID derives an identifier for records the harvest left unidentified:
// DOI first, then PMID, then a random UUID.
func assignID(r *record.Record) string {
	if r.HasDOI() {
		return "doi:" + r.DOI
	}
	if r.HasPMID() {
		return "pmid:" + r.PMID
	}
	return uuid.New().String()
}

// EnsureUniqueIDs suffixes colliding batch IDs (-2, -3, ...) so every
// record is unique against the existing corpus and within the batch.
func EnsureUniqueIDs(existing, batch []record.Record) {
	working := make([]record.Record, len(existing), len(existing)+len(batch))
	copy(working, existing)

	for i := range batch {
		batch[i].ID = storage.GenerateUniqueID(working, batch[i].ID)
		working = append(working, batch[i])
	}
}

// Action describes what a corpus merge should do with an incoming record.
type Action struct {
	Kind        string // new, update
	Reason      string // doi_match, pmid_match, id_match
	ExistingIdx int
}

// Classify determines what to do with an incoming record. Records matching
// an existing DOI, PMID, or ID are updates; everything else is new.
// Panics if the incoming record has an empty ID, as this indicates the
// batch was not prepared.
func Classify(existing []record.Record, incoming record.Record) Action {
	if incoming.ID == "" {
		panic("Classify called with empty ID - batch must run through Prepare first")
	}

	// Check for DOI match first (primary deduplication)
	if incoming.HasDOI() {
		if idx, found := storage.FindByDOI(existing, incoming.DOI); found {
			return Action{Kind: ActionUpdate, Reason: "doi_match", ExistingIdx: idx}
		}
	}

	// Then PMID
	if incoming.HasPMID() {
		if idx, found := storage.FindByPMID(existing, incoming.PMID); found {
			return Action{Kind: ActionUpdate, Reason: "pmid_match", ExistingIdx: idx}
		}
	}

	// Then corpus ID
	if idx, found := storage.FindByID(existing, incoming.ID); found {
		return Action{Kind: ActionUpdate, Reason: "id_match", ExistingIdx: idx}
	}

	// No match - genuinely new
	return Action{Kind: ActionNew}
}

package dedupe

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/litsift/litsift/internal/normalize"
	"github.com/litsift/litsift/internal/record"
)

// FuzzyPass merges records whose normalized titles reach the similarity
// threshold and whose years are within tolerance. Records with an empty
// normalized title never participate and are always kept. Missing years are
// compatible with anything. TitleNorm caches are filled in place; everything
// else is left untouched and survivors keep input order.
//
// Only similarity scoring runs concurrently. Group formation and survivor
// selection are sequential in index order, so output is deterministic for a
// given input order.
func FuzzyPass(records []record.Record, opts Options) ([]record.Record, int, []Group, error) {
	if err := opts.Validate(); err != nil {
		return nil, 0, nil, err
	}
	if len(records) < 2 {
		return records, 0, nil, nil
	}

	var eligible []int
	for i := range records {
		if records[i].TitleNorm == "" {
			records[i].TitleNorm = normalize.TitleKey(records[i].Title)
		}
		if records[i].TitleNorm != "" {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) < 2 {
		return records, 0, nil, nil
	}

	titles := make([]string, len(eligible))
	for k, idx := range eligible {
		titles[k] = records[idx].TitleNorm
	}
	rows := similarityRows(titles, opts.workers())

	grouped := make([]bool, len(eligible))
	dropped := make([]bool, len(records))
	var groups []Group
	removed := 0
	for ei := range eligible {
		if grouped[ei] {
			continue
		}
		grouped[ei] = true
		member := []int{eligible[ei]}
		anchor := &records[eligible[ei]]
		for ej := ei + 1; ej < len(eligible); ej++ {
			if grouped[ej] {
				continue
			}
			if rows[ei][ej-ei-1] < opts.Threshold {
				continue
			}
			candidate := &records[eligible[ej]]
			if !yearsCompatible(anchor.Year, candidate.Year, opts.YearTolerance) {
				continue
			}
			grouped[ej] = true
			member = append(member, eligible[ej])
		}
		if len(member) < 2 {
			continue
		}

		best := ChooseBest(records, member)
		g := Group{
			Kind:     GroupFuzzy,
			Key:      records[best].TitleNorm,
			Survivor: displayID(&records[best]),
		}
		for _, idx := range member {
			if idx == best {
				continue
			}
			dropped[idx] = true
			removed++
			g.Removed = append(g.Removed, displayID(&records[idx]))
		}
		groups = append(groups, g)
	}

	return keepSurvivors(records, dropped, removed), removed, groups, nil
}

// similarityRows computes the upper triangle of the pairwise similarity
// matrix. Row i holds similarities against titles i+1..n-1. Rows are
// independent, so they parallelize without locking.
func similarityRows(titles []string, workers int) [][]float64 {
	rows := make([][]float64, len(titles))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < len(titles)-1; i++ {
		i := i
		g.Go(func() error {
			row := make([]float64, len(titles)-i-1)
			for j := i + 1; j < len(titles); j++ {
				row[j-i-1] = Similarity(titles[i], titles[j])
			}
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

// yearsCompatible applies the publication-year gate. A missing year on
// either side passes.
func yearsCompatible(a, b, tolerance int) bool {
	if a == 0 || b == 0 {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// workers resolves the similarity parallelism cap.
func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

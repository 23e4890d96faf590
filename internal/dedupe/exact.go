package dedupe

import "github.com/litsift/litsift/internal/record"

// ExactPass collapses records sharing any configured identifier key. Records
// sharing a DOI with one record and a PMID with another all land in a single
// group, so every group resolves to one survivor. Empty identifier values
// never match each other. Survivors keep input order.
func ExactPass(records []record.Record, keys []string) ([]record.Record, int, []Group, error) {
	if keys == nil {
		keys = DefaultKeys()
	}
	if err := validateKeys(keys); err != nil {
		return nil, 0, nil, err
	}
	if len(records) < 2 {
		return records, 0, nil, nil
	}

	uf := newUnionFind(len(records))
	for _, kind := range keys {
		first := make(map[string]int)
		for i := range records {
			value := records[i].Key(kind)
			if value == "" {
				continue
			}
			if seen, ok := first[value]; ok {
				uf.union(seen, i)
			} else {
				first[value] = i
			}
		}
	}

	members := make(map[int][]int)
	for i := range records {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	var groups []Group
	dropped := make([]bool, len(records))
	removed := 0
	for i := range records {
		group := members[i]
		if len(group) < 2 {
			continue
		}
		best := ChooseBest(records, group)
		g := Group{
			Kind:     GroupExact,
			Key:      exactKey(&records[best], keys),
			Survivor: displayID(&records[best]),
		}
		for _, idx := range group {
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

// exactKey labels a group with the survivor's first non-empty identifier.
func exactKey(r *record.Record, keys []string) string {
	for _, kind := range keys {
		if value := r.Key(kind); value != "" {
			return kind + ":" + value
		}
	}
	return ""
}

// keepSurvivors rebuilds the batch without dropped records, preserving order.
func keepSurvivors(records []record.Record, dropped []bool, removed int) []record.Record {
	kept := make([]record.Record, 0, len(records)-removed)
	for i := range records {
		if !dropped[i] {
			kept = append(kept, records[i])
		}
	}
	return kept
}

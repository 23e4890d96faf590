package dedupe

// Jaro-Winkler parameters, standard formulation.
const (
	winklerPrefixScale = 0.1
	winklerMaxPrefix   = 4
	winklerBoostFloor  = 0.7
)

// Similarity returns the Jaro-Winkler similarity of two strings in [0, 1].
// Either side empty gives 0; equal non-empty strings give 1. Inputs are
// compared rune-wise, so normalized titles with non-ASCII letters score
// correctly.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	sim := jaro(ra, rb)
	if sim <= winklerBoostFloor {
		return sim
	}

	prefix := 0
	for prefix < len(ra) && prefix < len(rb) && prefix < winklerMaxPrefix {
		if ra[prefix] != rb[prefix] {
			break
		}
		prefix++
	}
	return sim + float64(prefix)*winklerPrefixScale*(1-sim)
}

// jaro computes the base Jaro similarity: matches within a sliding window of
// half the longer string, transpositions counted half each.
func jaro(a, b []rune) float64 {
	la, lb := len(a), len(b)
	window := max(la, lb)/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		lo := max(i-window, 0)
		hi := min(i+window+1, lb)
		for j := lo; j < hi; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3
}

package distill

import (
	"sort"
	"strings"
	"unicode"
)

// Candidate is one cleaned sentence with its salience score and the word
// set used for near-duplicate checks.
type Candidate struct {
	Text  string
	Index int // position among the cleaned sentences
	Score int
	Words map[string]struct{}
}

var (
	discoveryWords = []string{"found", "discovered", "shows", "revealed", "study", "research", "scientists", "researchers", "measured", "data", "results"}
	impactWords    = []string{"could", "may", "might", "help", "important", "means", "change", "future", "first", "new", "understand"}
)

// score is 2 per discovery word and 1 per impact word found anywhere in
// the lower-cased sentence, so "researchers" also counts "research", plus
// 1 when the sentence has a digit.
func score(s string) int {
	lower := strings.ToLower(s)
	n := 0
	for _, w := range discoveryWords {
		if strings.Contains(lower, w) {
			n += 2
		}
	}
	for _, w := range impactWords {
		if strings.Contains(lower, w) {
			n++
		}
	}
	if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
		n++
	}
	return n
}

// Select walks scored candidates from the highest score down, keeping
// input order among equal scores, and accepts a candidate when its score
// is positive and it shares at most half of its own words with every
// candidate already accepted. It stops after n candidates.
func Select(scored []Candidate, n int) []Candidate {
	return selectWithOverlap(scored, n, 0.5)
}

func selectWithOverlap(scored []Candidate, n int, dup float64) []Candidate {
	if n <= 0 || len(scored) == 0 {
		return nil
	}
	sorted := make([]Candidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var out []Candidate
	for _, c := range sorted {
		if c.Score <= 0 {
			continue
		}
		if redundant(c, out, dup) {
			continue
		}
		out = append(out, c)
		if len(out) >= n {
			break
		}
	}
	return out
}

func redundant(c Candidate, selected []Candidate, dup float64) bool {
	limit := float64(len(c.Words)) * dup
	for _, prev := range selected {
		if float64(overlap(c.Words, prev.Words)) > limit {
			return true
		}
	}
	return false
}

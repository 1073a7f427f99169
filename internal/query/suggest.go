package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.8

// Suggest returns up to limit names resembling term, most similar first.
// It backs "did you mean" hints when a name query finds nothing.
func Suggest(names []string, term string, limit int) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		name  string
		score float32
	}
	var candidates []candidate
	for _, name := range names {
		score, err := edlib.StringsSimilarity(term, strings.ToLower(name), edlib.JaroWinkler)
		if err != nil || score < suggestThreshold {
			continue
		}
		candidates = append(candidates, candidate{name: name, score: score})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.name)
	}
	return out
}

package match

import (
	"slices"
	"strings"
)

// MinScore is the similarity below which a name is not worth suggesting.
const MinScore = 0.5

// Candidate is a known name scored against a misspelled one.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every name against target, best first. Ties keep the order
// of names. Names below MinScore are dropped.
func Rank(target string, names []string) []Candidate {
	norm := NormalizeIdent(target)
	tokens := TokenizeIdent(target)

	var out []Candidate

	for _, name := range names {
		if name == target {
			continue
		}

		score := Similarity(norm, NormalizeIdent(name))

		// Reordered words ("KeyedPair" for "PairKeyed") score on tokens.
		if t := tokenScore(tokens, TokenizeIdent(name)); t > score {
			score = t
		}

		if score >= MinScore {
			out = append(out, Candidate{Name: name, Score: score})
		}
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return out
}

// tokenScore is the share of tokens both identifiers contain.
func tokenScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	common := 0

	for _, t := range a {
		if slices.Contains(b, t) {
			common++
		}
	}

	return float64(common) / float64(max(len(a), len(b)))
}

// Suggest returns up to limit names close to target, best first.
func Suggest(target string, names []string, limit int) []string {
	ranked := Rank(target, names)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.Name
	}

	return out
}

// DidYouMean returns " (did you mean X?)" naming up to three close names,
// or "" when none is close.
func DidYouMean(target string, names []string) string {
	s := Suggest(target, names, 3)

	switch len(s) {
	case 0:
		return ""
	case 1:
		return " (did you mean " + s[0] + "?)"
	default:
		return " (did you mean " + strings.Join(s[:len(s)-1], ", ") + " or " + s[len(s)-1] + "?)"
	}
}

package errors

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// MaxSuggestionDistance is the largest edit distance a suggestion may have.
const MaxSuggestionDistance = 3

// MaxSuggestions caps the number of suggestions returned.
const MaxSuggestions = 3

// Suggestion is a candidate name close to a misspelled one.
type Suggestion struct {
	Value    string
	Distance int
}

// allowedDistance shrinks the threshold for short names, where a distance of
// two or three matches almost anything.
func allowedDistance(name string) int {
	switch n := len(name); {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	default:
		return MaxSuggestionDistance
	}
}

// SuggestSimilar returns the candidates closest to target, nearest first and
// then alphabetically. Comparison ignores case. Candidates starting with a
// double underscore are internal and only offered when target does too.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	if target == "" {
		return nil
	}
	lower := strings.ToLower(target)
	hidden := !strings.HasPrefix(target, "__")
	limit := allowedDistance(lower)

	var out []Suggestion
	for _, c := range candidates {
		if c == "" || (hidden && strings.HasPrefix(c, "__")) {
			continue
		}
		cl := strings.ToLower(c)
		if cl == lower {
			continue
		}
		if d := levenshteinDistance(lower, cl); d <= limit {
			out = append(out, Suggestion{Value: c, Distance: d})
		}
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), strings.Compare(a.Value, b.Value))
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a hint line, or "" for none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("Did you mean '%s'?", suggestions[0].Value)
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	return "Did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

// levenshteinDistance counts the single-rune edits turning a into b, using
// one row of the edit matrix.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			above := row[j]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(rb)]
}

package vocab

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Suggestion is the closest keyword found for a word.
type Suggestion struct {
	Command    string
	Similarity float64
}

// FindSimilar returns the candidate in mode closest to word (compared lower
// case) whose similarity ratio is at least minSimilarity. The ratio is the
// Ratcliff/Obershelp measure 2*M/T over longest matching blocks. Equal
// ratios resolve to the candidate that sorts last. minSimilarity is clamped
// to [0, 1].
func (v *Vocabulary) FindSimilar(word, mode string, minSimilarity float64) (Suggestion, bool) {
	cutoff := min(max(minSimilarity, 0), 1)

	m := difflib.NewMatcher(nil, chars(strings.ToLower(word)))

	var best Suggestion
	found := false
	for _, cand := range v.Candidates(mode) {
		m.SetSeq1(chars(cand))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		r := m.Ratio()
		if r < cutoff {
			continue
		}
		// Candidates arrive sorted, so >= keeps the last of equal ratios.
		if !found || r >= best.Similarity {
			best = Suggestion{Command: cand, Similarity: r}
			found = true
		}
	}
	return best, found
}

// Ratio returns the similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// chars splits s into one-character strings, the unit difflib compares.
func chars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}

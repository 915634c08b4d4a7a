package diagnosis

import (
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/abhisek/iosdiag/internal/marker"
	"github.com/abhisek/iosdiag/internal/vocab"
)

// DefaultSimilarityThreshold is the minimum similarity a keyword suggestion
// needs unless a pattern sets its own.
const DefaultSimilarityThreshold = 0.6

// Suggester finds the known keyword closest to a word in a CLI mode.
// *vocab.Vocabulary implements it.
type Suggester interface {
	FindSimilar(word, mode string, minSimilarity float64) (vocab.Suggestion, bool)
}

// FuzzyOptions tunes typo identification on a FuzzyPattern.
type FuzzyOptions struct {
	Disabled bool
	// SimilarityThreshold of zero means DefaultSimilarityThreshold.
	SimilarityThreshold float64
}

// FuzzyPattern is a SignaturePattern that, once matched, tries to name the
// misspelled keyword under the caret and suggest a correction.
type FuzzyPattern struct {
	*SignaturePattern

	enabled   bool
	threshold float64
	suggester Suggester
}

// NewFuzzyPattern builds a FuzzyPattern. A nil suggester uses the built-in
// vocabulary.
func NewFuzzyPattern(cfg SignatureConfig, opts FuzzyOptions, suggester Suggester) (*FuzzyPattern, error) {
	base, err := NewSignaturePattern(cfg)
	if err != nil {
		return nil, err
	}
	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, invalidField("fuzzy_matching.similarity_threshold", "%v is outside [0, 1]", threshold)
	}
	if suggester == nil {
		suggester = vocab.Default()
	}
	return &FuzzyPattern{
		SignaturePattern: base,
		enabled:          !opts.Disabled,
		threshold:        threshold,
		suggester:        suggester,
	}, nil
}

// FuzzyEnabled reports whether typo identification runs.
func (p *FuzzyPattern) FuzzyEnabled() bool { return p.enabled }

// SimilarityThreshold is the minimum similarity of a suggestion.
func (p *FuzzyPattern) SimilarityThreshold() float64 { return p.threshold }

// typo is a misspelled command word and its suggested replacement.
type typo struct {
	word       marker.Word
	suggestion vocab.Suggestion
}

// Detect runs the signature checks and then, on a match, rewrites the
// diagnosis around the identified typo. Without a typo the signature
// result is returned as is.
func (p *FuzzyPattern) Detect(command, output string) DetectionResult {
	res := p.SignaturePattern.Detect(command, output)
	if !res.Matched || !p.enabled {
		return res
	}
	t, ok := p.identifyTypo(command, output)
	if !ok {
		return res
	}

	corrected := correctCommand(command, t.word, t.suggestion.Command)
	pct := int(math.Round(t.suggestion.Similarity * 100))

	res.Diagnosis = fmt.Sprintf(
		"You have a typo in the '%s' keyword. Did you mean '%s'? (similarity: %d%%)\n\nOriginal diagnosis: %s",
		t.word.Text, t.suggestion.Command, pct, res.Diagnosis,
	)
	res.Fix = fmt.Sprintf("Use the corrected command: %s\n\n%s", corrected, res.Fix)

	meta := maps.Clone(res.Metadata)
	meta[MetaTypoDetected] = true
	meta[MetaTypoWord] = t.word.Text
	meta[MetaSuggestedWord] = t.suggestion.Command
	meta[MetaSimilarityScore] = t.suggestion.Similarity
	meta[MetaSimilarityMin] = p.threshold
	meta[MetaCorrectedCommand] = corrected
	res.Metadata = meta
	return res
}

func (p *FuzzyPattern) identifyTypo(command, output string) (typo, bool) {
	w, ok := marker.ExtractWordAtMarker(command, output)
	if !ok {
		return typo{}, false
	}
	mode := marker.DetectMode(output)
	s, ok := p.suggester.FindSimilar(w.Text, string(mode), p.threshold)
	if !ok || strings.EqualFold(s.Command, w.Text) {
		return typo{}, false
	}
	return typo{word: w, suggestion: s}, true
}

// correctCommand swaps the typo for suggestion. The word at the same index
// in command is replaced when it is the typo; otherwise the first
// occurrence of the typo text is.
func correctCommand(command string, w marker.Word, suggestion string) string {
	words := marker.Words(command)
	if w.Index < len(words) && strings.EqualFold(words[w.Index].Text, w.Text) {
		cw := words[w.Index]
		return command[:cw.Start] + suggestion + command[cw.End:]
	}
	return strings.Replace(command, w.Text, suggestion, 1)
}

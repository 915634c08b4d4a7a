package diagnosis

import (
	"maps"
	"slices"
)

// Metadata keys set on matched results.
const (
	MetaPatternID        = "pattern_id"
	MetaVariables        = "variables"
	MetaAffectedModes    = "affected_modes"
	MetaTypoDetected     = "typo_detected"
	MetaTypoWord         = "typo_word"
	MetaSuggestedWord    = "suggested_word"
	MetaSimilarityScore  = "similarity_score"
	MetaSimilarityMin    = "similarity_threshold"
	MetaCorrectedCommand = "corrected_command"
)

// DetectionResult is the outcome of running one pattern against a command
// and its device output. An unmatched result carries no other fields.
type DetectionResult struct {
	Matched   bool           `json:"matched"`
	ErrorType string         `json:"error_type,omitempty"`
	Command   string         `json:"command,omitempty"`
	Diagnosis string         `json:"diagnosis,omitempty"`
	Fix       string         `json:"fix,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PatternID returns the id of the pattern that produced r, or "".
func (r DetectionResult) PatternID() string {
	id, _ := r.Metadata[MetaPatternID].(string)
	return id
}

// Variables returns the template variables extracted for r.
func (r DetectionResult) Variables() map[string]string {
	vars, _ := r.Metadata[MetaVariables].(map[string]string)
	return vars
}

// ToMap renders r as the plain mapping handed to prompt builders:
// type, command, diagnosis, fix and metadata.
func (r DetectionResult) ToMap() map[string]any {
	meta := cloneMetadata(r.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"type":      r.ErrorType,
		"command":   r.Command,
		"diagnosis": r.Diagnosis,
		"fix":       r.Fix,
		"metadata":  meta,
	}
}

// ResultToMap is ToMap for detector output: nil and unmatched results map to
// nil.
func ResultToMap(r *DetectionResult) map[string]any {
	if r == nil || !r.Matched {
		return nil
	}
	return r.ToMap()
}

// cloneMetadata deep-copies the JSON-shaped values metadata can hold, so a
// result never shares storage with its pattern or with another result.
func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMetadata(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}

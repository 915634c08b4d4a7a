package diagnosis

import (
	"fmt"
	"strings"
)

// outputPreviewLen bounds how much device output a failure message quotes.
const outputPreviewLen = 100

// VerifyCase is one expectation about a command and its output.
type VerifyCase struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Command string `json:"command" yaml:"command"`
	Output  string `json:"output" yaml:"output"`
	// ShouldMatch defaults to true.
	ShouldMatch  *bool  `json:"should_match,omitempty" yaml:"should_match,omitempty"`
	ExpectedType string `json:"expected_type,omitempty" yaml:"expected_type,omitempty"`
	// Mode is passed as the detection context's current mode.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

func (c VerifyCase) wantMatch() bool {
	return c.ShouldMatch == nil || *c.ShouldMatch
}

func (c VerifyCase) label(i int) string {
	if c.Name != "" {
		return fmt.Sprintf("case #%d (%s)", i, c.Name)
	}
	return fmt.Sprintf("case #%d", i)
}

// VerifyReport tallies a verification run.
type VerifyReport struct {
	Passed   int      `json:"passed" yaml:"passed"`
	Failed   int      `json:"failed" yaml:"failed"`
	Failures []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// OK reports whether every case passed.
func (r VerifyReport) OK() bool { return r.Failed == 0 }

func (r *VerifyReport) fail(msg string) {
	r.Failed++
	r.Failures = append(r.Failures, msg)
}

// Verifier checks patterns against expected outcomes.
type Verifier struct {
	detector *Detector
}

// NewVerifier returns a verifier over d.
func NewVerifier(d *Detector) *Verifier {
	return &Verifier{detector: d}
}

// VerifyPattern runs cases against the single pattern id, ignoring priority
// and mode filtering. An unknown id fails every case.
func (v *Verifier) VerifyPattern(id string, cases []VerifyCase) VerifyReport {
	p, ok := v.detector.Registry().Get(id)
	if !ok {
		return VerifyReport{
			Failed:   len(cases),
			Failures: []string{fmt.Errorf("%w: %q", ErrPatternNotFound, id).Error()},
		}
	}

	var rep VerifyReport
	for i, c := range cases {
		res := p.Detect(c.Command, c.Output)
		var got *DetectionResult
		if res.Matched {
			got = &res
		}
		v.check(&rep, i, c, got)
	}
	return rep
}

// VerifyDetector runs cases through the full detector.
func (v *Verifier) VerifyDetector(cases []VerifyCase) VerifyReport {
	var rep VerifyReport
	for i, c := range cases {
		var dctx *Context
		if c.Mode != "" {
			dctx = &Context{CurrentMode: c.Mode}
		}
		v.check(&rep, i, c, v.detector.Detect(c.Command, c.Output, dctx))
	}
	return rep
}

func (v *Verifier) check(rep *VerifyReport, i int, c VerifyCase, got *DetectionResult) {
	want := c.wantMatch()
	switch {
	case want && got == nil:
		rep.fail(fmt.Sprintf("%s: expected a match, got none\n  command: %s\n  output: %s",
			c.label(i), c.Command, preview(c.Output)))
	case !want && got != nil:
		rep.fail(fmt.Sprintf("%s: expected no match, got %s\n  command: %s\n  pattern: %s",
			c.label(i), got.ErrorType, c.Command, got.PatternID()))
	case want && c.ExpectedType != "" && got.ErrorType != c.ExpectedType:
		rep.fail(fmt.Sprintf("%s: error type mismatch\n  expected: %s\n  got: %s",
			c.label(i), c.ExpectedType, got.ErrorType))
	default:
		rep.Passed++
	}
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if len(s) <= outputPreviewLen {
		return s
	}
	return s[:outputPreviewLen] + "..."
}

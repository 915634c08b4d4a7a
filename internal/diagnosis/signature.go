package diagnosis

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/abhisek/iosdiag/internal/marker"
)

// endOfCommandRatio is how far along its line the caret must sit for an
// end_of_command marker check.
const endOfCommandRatio = 0.7

// SignatureConfig describes a SignaturePattern.
type SignatureConfig struct {
	ID          string
	Description string
	Priority    int
	ErrorType   string
	// Signatures must all appear in the output.
	Signatures []string
	// CommandRegex is searched for anywhere in the command.
	CommandRegex string
	IgnoreCase   bool

	DiagnosisTemplate string
	FixTemplate       string
	// DiagnosisVariables names capture groups 1..n of CommandRegex.
	DiagnosisVariables []string
	FixExamples        []string

	MarkerCheck *MarkerCheck
	Metadata    map[string]any
}

// SignaturePattern matches output signatures and a command regex and
// renders templated diagnosis and fix text.
type SignaturePattern struct {
	id          string
	description string
	priority    int
	errorType   string
	signatures  []string
	re          *regexp.Regexp

	diagnosisTemplate  string
	fixTemplate        string
	diagnosisVariables []string
	fixExamples        []string

	markerCheck   *MarkerCheck
	metadata      map[string]any
	affectedModes []string
}

// NewSignaturePattern validates cfg and compiles its regex.
func NewSignaturePattern(cfg SignatureConfig) (*SignaturePattern, error) {
	switch {
	case cfg.ID == "":
		return nil, missingField("pattern_id")
	case cfg.ErrorType == "":
		return nil, missingField("error_type")
	case cfg.DiagnosisTemplate == "":
		return nil, missingField("diagnosis")
	case cfg.FixTemplate == "":
		return nil, missingField("fix")
	}
	if cfg.MarkerCheck != nil && cfg.MarkerCheck.Enabled && !cfg.MarkerCheck.ExpectedPosition.Valid() {
		return nil, invalidField("marker_check.expected_position", "unknown position %q", cfg.MarkerCheck.ExpectedPosition)
	}

	expr := cfg.CommandRegex
	if cfg.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, invalidField("command_pattern.regex", "%v", err)
	}

	modes, err := affectedModes(cfg.Metadata)
	if err != nil {
		return nil, err
	}

	var mc *MarkerCheck
	if cfg.MarkerCheck != nil {
		c := *cfg.MarkerCheck
		mc = &c
	}

	return &SignaturePattern{
		id:                 cfg.ID,
		description:        cfg.Description,
		priority:           cfg.Priority,
		errorType:          cfg.ErrorType,
		signatures:         slices.Clone(cfg.Signatures),
		re:                 re,
		diagnosisTemplate:  cfg.DiagnosisTemplate,
		fixTemplate:        cfg.FixTemplate,
		diagnosisVariables: slices.Clone(cfg.DiagnosisVariables),
		fixExamples:        slices.Clone(cfg.FixExamples),
		markerCheck:        mc,
		metadata:           cloneMetadata(cfg.Metadata),
		affectedModes:      modes,
	}, nil
}

// affectedModes reads metadata.affected_modes as decoded from JSON
// ([]any) or set from Go ([]string).
func affectedModes(meta map[string]any) ([]string, error) {
	raw, ok := meta[MetaAffectedModes]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		modes := make([]string, 0, len(v))
		for _, m := range v {
			s, ok := m.(string)
			if !ok {
				return nil, invalidField("metadata.affected_modes", "expected strings, got %T", m)
			}
			modes = append(modes, s)
		}
		return modes, nil
	default:
		return nil, invalidField("metadata.affected_modes", "expected an array, got %T", raw)
	}
}

func (p *SignaturePattern) ID() string               { return p.id }
func (p *SignaturePattern) Description() string      { return p.description }
func (p *SignaturePattern) Priority() int            { return p.priority }
func (p *SignaturePattern) ErrorType() string        { return p.errorType }
func (p *SignaturePattern) Metadata() map[string]any { return cloneMetadata(p.metadata) }
func (p *SignaturePattern) AffectedModes() []string  { return slices.Clone(p.affectedModes) }
func (p *SignaturePattern) Signatures() []string     { return slices.Clone(p.signatures) }
func (p *SignaturePattern) FixExamples() []string    { return slices.Clone(p.fixExamples) }
func (p *SignaturePattern) CommandRegex() string     { return p.re.String() }
func (p *SignaturePattern) sealed()                  {}

func (p *SignaturePattern) String() string {
	return fmt.Sprintf("%s(priority=%d)", p.id, p.priority)
}

// Detect runs the signature, regex and marker checks in that order and
// renders the templates on success.
func (p *SignaturePattern) Detect(command, output string) DetectionResult {
	for _, sig := range p.signatures {
		if !strings.Contains(output, sig) {
			return DetectionResult{}
		}
	}

	loc := p.re.FindStringSubmatchIndex(command)
	if loc == nil {
		return DetectionResult{}
	}

	if p.markerCheck != nil && p.markerCheck.Enabled && !p.checkMarker(command, output, loc) {
		return DetectionResult{}
	}

	vars := p.extractVariables(command, loc)

	meta := cloneMetadata(p.metadata)
	if meta == nil {
		meta = make(map[string]any, 2)
	}
	meta[MetaPatternID] = p.id
	meta[MetaVariables] = vars

	return DetectionResult{
		Matched:   true,
		ErrorType: p.errorType,
		Command:   command,
		Diagnosis: formatTemplate(p.diagnosisTemplate, vars),
		Fix:       formatTemplate(p.fixTemplate, vars),
		Metadata:  meta,
	}
}

// extractVariables layers the command, then named groups, then the
// configured positional names. Groups that did not participate are "".
func (p *SignaturePattern) extractVariables(command string, loc []int) map[string]string {
	group := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return command[loc[2*i]:loc[2*i+1]]
	}

	vars := map[string]string{"command": command}
	names := p.re.SubexpNames()
	for i := 1; i < len(names); i++ {
		if names[i] != "" {
			vars[names[i]] = group(i)
		}
	}
	for i, name := range p.diagnosisVariables {
		if i+1 > p.re.NumSubexp() {
			break
		}
		vars[name] = group(i + 1)
	}
	return vars
}

// checkMarker applies the configured caret position rule. loc is the regex
// match in command.
func (p *SignaturePattern) checkMarker(command, output string, loc []int) bool {
	caret, ok := marker.Locate(output)
	if !ok {
		return false
	}

	switch p.markerCheck.ExpectedPosition {
	case MarkerBeforeSlash:
		return strings.Contains(command[loc[0]:loc[1]], "/")
	case MarkerAtChar:
		// The echo may carry the command with surrounding text; the caret
		// must land inside the matched span, its end included.
		off := strings.Index(caret.CommandText, command)
		if off < 0 {
			return false
		}
		pos := caret.Position() - off
		return pos >= loc[0] && pos <= loc[1]
	case MarkerEndOfCommand:
		return float64(caret.Column) > float64(len(caret.Line))*endOfCommandRatio
	}
	return false
}

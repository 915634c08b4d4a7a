package diagnosis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/abhisek/iosdiag/internal/schema"
)

// SupportedMajorVersion is the only pattern document major version read.
// Documents without a version are treated as this version.
const SupportedMajorVersion = "v1"

// ignoreCaseFlag is the command_pattern.flags value for case-insensitive
// regexes.
const ignoreCaseFlag = "IGNORECASE"

type document struct {
	Version  string            `json:"version"`
	Patterns []json.RawMessage `json:"patterns"`
}

type patternDef struct {
	PatternID      string         `json:"pattern_id"`
	Description    string         `json:"description"`
	Priority       int            `json:"priority"`
	Signatures     []string       `json:"signatures"`
	CommandPattern commandDef     `json:"command_pattern"`
	ErrorType      string         `json:"error_type"`
	Diagnosis      templateField  `json:"diagnosis"`
	Fix            templateField  `json:"fix"`
	MarkerCheck    *MarkerCheck   `json:"marker_check"`
	Metadata       map[string]any `json:"metadata"`
	FuzzyMatching  *fuzzyDef      `json:"fuzzy_matching"`
}

type commandDef struct {
	Regex string `json:"regex"`
	Flags string `json:"flags"`
}

type fuzzyDef struct {
	Enabled             *bool    `json:"enabled"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

// templateField is a diagnosis or fix: either a bare template string or an
// object carrying the template plus variables (diagnosis) or examples (fix).
type templateField struct {
	Template  string
	Variables []string
	Examples  []string
}

func (t *templateField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*t = templateField{}
		return json.Unmarshal(data, &t.Template)
	}
	var obj struct {
		Template  string   `json:"template"`
		Variables []string `json:"variables"`
		Examples  []string `json:"examples"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = templateField{Template: obj.Template, Variables: obj.Variables, Examples: obj.Examples}
	return nil
}

// LoadFile loads the pattern document at path. A missing file loads zero
// patterns and is not an error.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("pattern file not found", zap.String("source", path))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pattern file: %w", err)
	}
	return r.LoadJSON(data, path)
}

// LoadFS is LoadFile over fsys.
func (r *Registry) LoadFS(fsys fs.FS, name string) (int, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("pattern file not found", zap.String("source", name))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pattern file: %w", err)
	}
	return r.LoadJSON(data, name)
}

// LoadJSON registers every valid entry of a pattern document and returns
// how many were added. Invalid entries and duplicate ids are logged and
// skipped. A malformed document fails as a whole with a *ValidationError.
func (r *Registry) LoadJSON(data []byte, source string) (int, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for i, raw := range doc.Patterns {
		p, err := buildPattern(raw, r.suggester)
		if err != nil {
			r.logger.Error("skipping invalid pattern",
				zap.String("source", source),
				zap.Int("index", i),
				zap.String("pattern_id", peekID(raw)),
				zap.Error(err),
			)
			continue
		}
		if err := r.register(p, source); err != nil {
			r.logger.Warn("skipping duplicate pattern",
				zap.String("source", source),
				zap.Int("index", i),
				zap.String("pattern_id", p.ID()),
				zap.String("first_source", sourceName(r.Source(p.ID()))),
				zap.Error(err),
			)
			continue
		}
		loaded++
	}

	r.logger.Info("patterns loaded",
		zap.String("source", source),
		zap.Int("count", loaded),
		zap.Int("skipped", len(doc.Patterns)-loaded),
	)
	return loaded, nil
}

// ValidateFile checks a pattern document without registering anything and
// returns every problem found, including ids repeated within the document.
func ValidateFile(data []byte) (bool, []string) {
	const source = "document"

	doc, err := parseDocument(data, source)
	if err != nil {
		return false, []string{err.Error()}
	}

	var problems []string
	seen := make(map[string]int)
	for i, raw := range doc.Patterns {
		p, err := buildPattern(raw, nil)
		if err != nil {
			problems = append(problems, (&ValidationError{
				Source: source, Index: i, PatternID: peekID(raw), Err: err,
			}).Error())
			continue
		}
		if first, ok := seen[p.ID()]; ok {
			problems = append(problems, (&ValidationError{
				Source: source, Index: i, PatternID: p.ID(),
				Err: fmt.Errorf("%w: also defined at #%d", ErrDuplicatePattern, first),
			}).Error())
			continue
		}
		seen[p.ID()] = i
	}
	return len(problems) == 0, problems
}

func parseDocument(data []byte, source string) (*document, error) {
	if _, err := schema.Decode(documentSchema, data); err != nil {
		return nil, &ValidationError{Source: source, Index: -1, Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Source: source, Index: -1, Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, &ValidationError{Source: source, Index: -1, Err: err}
	}
	return &doc, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	canon := v
	if !strings.HasPrefix(canon, "v") {
		canon = "v" + canon
	}
	if !semver.IsValid(canon) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if semver.Major(canon) != SupportedMajorVersion {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedVersion, v, SupportedMajorVersion)
	}
	return nil
}

// buildPattern validates one document entry and constructs its pattern.
func buildPattern(raw json.RawMessage, suggester Suggester) (Pattern, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, invalidField("pattern", "%v", err)
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return nil, invalidField("pattern", "expected an object, got %T", generic)
	}
	for _, f := range requiredFields {
		if _, ok := obj[f]; !ok {
			return nil, missingField(f)
		}
	}
	if err := schema.Validate(entrySchema, obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidField, err)
	}

	var def patternDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, invalidField("pattern", "%v", err)
	}

	cfg := SignatureConfig{
		ID:                 def.PatternID,
		Description:        def.Description,
		Priority:           def.Priority,
		ErrorType:          def.ErrorType,
		Signatures:         def.Signatures,
		CommandRegex:       def.CommandPattern.Regex,
		IgnoreCase:         strings.EqualFold(def.CommandPattern.Flags, ignoreCaseFlag),
		DiagnosisTemplate:  def.Diagnosis.Template,
		FixTemplate:        def.Fix.Template,
		DiagnosisVariables: def.Diagnosis.Variables,
		FixExamples:        def.Fix.Examples,
		MarkerCheck:        def.MarkerCheck,
		Metadata:           def.Metadata,
	}

	if def.FuzzyMatching == nil {
		return NewSignaturePattern(cfg)
	}
	var opts FuzzyOptions
	if def.FuzzyMatching.Enabled != nil {
		opts.Disabled = !*def.FuzzyMatching.Enabled
	}
	if def.FuzzyMatching.SimilarityThreshold != nil {
		opts.SimilarityThreshold = *def.FuzzyMatching.SimilarityThreshold
	}
	return NewFuzzyPattern(cfg, opts, suggester)
}

// peekID pulls pattern_id out of an entry that may not be valid.
func peekID(raw json.RawMessage) string {
	var v struct {
		PatternID any `json:"pattern_id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	id, _ := v.PatternID.(string)
	return id
}

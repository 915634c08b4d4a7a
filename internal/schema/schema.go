// Package schema checks pattern and vocabulary documents against JSON Schema
// definitions declared as Go maps, and reports each violation with the
// location of the offending value.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema definition. It is compiled on first use;
// share it by pointer.
type Schema struct {
	Name       string
	Definition map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Violation is one failed constraint. Location is a JSON pointer into the
// checked document; the root is "".
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + v.Message
}

// ErrInvalidDocument indicates a document that is not JSON or does not
// conform to a schema. Violations is empty when the document could not be
// parsed or the schema itself is broken.
type ErrInvalidDocument struct {
	Schema     string
	Violations []Violation
	Err        error
}

func (e *ErrInvalidDocument) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("document does not match schema %q: %v", e.Schema, e.Err)
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("document does not match schema %q: %s", e.Schema, strings.Join(parts, "; "))
}

func (e *ErrInvalidDocument) Unwrap() error { return e.Err }

// Validate checks a value decoded by encoding/json into any. A nil schema
// accepts everything.
func Validate(s *Schema, value any) error {
	if s == nil {
		return nil
	}
	c, err := s.compile()
	if err != nil {
		return &ErrInvalidDocument{Schema: s.Name, Err: err}
	}
	if err := c.Validate(value); err != nil {
		return &ErrInvalidDocument{Schema: s.Name, Violations: violations(err), Err: err}
	}
	return nil
}

// Decode parses raw JSON and validates it against s.
func Decode(s *Schema, raw []byte) (any, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		name := ""
		if s != nil {
			name = s.Name
		}
		return nil, &ErrInvalidDocument{Schema: name, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := Validate(s, parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		s.compiled, s.err = compileDefinition(s.Name, s.Definition)
	})
	return s.compiled, s.err
}

func compileDefinition(name string, def map[string]any) (*jsonschema.Schema, error) {
	// Go literals hold []string and int; the compiler wants the shapes its
	// own JSON decoder produces.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("schema %q: marshal definition: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema %q: parse definition: %w", name, err)
	}

	url := "schema://iosdiag/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", name, err)
	}
	return compiled, nil
}

// violations flattens a validation failure to its leaf errors, which are
// the constraints a document author can act on.
func violations(err error) []Violation {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Violation{{Message: err.Error()}}
	}
	var out []Violation
	var walk func(u jsonschema.OutputUnit)
	walk = func(u jsonschema.OutputUnit) {
		if len(u.Errors) == 0 {
			if u.Error != nil {
				out = append(out, Violation{Location: u.InstanceLocation, Message: u.Error.String()})
			}
			return
		}
		for _, c := range u.Errors {
			walk(c)
		}
	}
	walk(*verr.DetailedOutput())
	return out
}

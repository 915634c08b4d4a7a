package diagnosis

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicatePattern   = errors.New("pattern id already registered")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidField       = errors.New("invalid field")
	ErrInvalidDocument    = errors.New("invalid pattern document")
	ErrUnsupportedVersion = errors.New("unsupported pattern document version")
	ErrPatternNotFound    = errors.New("pattern not found")
)

// ValidationError reports a pattern definition that could not be loaded.
// Index is the entry's position in its document, or -1 when the error is
// not tied to an entry: the whole document is at fault, or the pattern was
// registered directly.
type ValidationError struct {
	Source    string
	Index     int
	PatternID string
	Err       error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index < 0 && e.PatternID != "":
		return fmt.Sprintf("%s: pattern %s: %v", e.Source, e.PatternID, e.Err)
	case e.Index < 0:
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	case e.PatternID != "":
		return fmt.Sprintf("%s: pattern #%d (%s): %v", e.Source, e.Index, e.PatternID, e.Err)
	default:
		return fmt.Sprintf("%s: pattern #%d: %v", e.Source, e.Index, e.Err)
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

func invalidField(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidField, name, fmt.Sprintf(format, args...))
}

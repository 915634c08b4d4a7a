package diagnosis

// Pattern decides whether a command and its output represent one known
// error and renders the diagnosis when they do. The variants are
// *SignaturePattern and *FuzzyPattern.
type Pattern interface {
	ID() string
	Description() string
	// Priority orders evaluation; higher runs first.
	Priority() int
	ErrorType() string
	Metadata() map[string]any
	// AffectedModes lists the CLI modes the pattern applies to. Empty means
	// every mode.
	AffectedModes() []string
	// Detect never returns a partially filled result: either Matched is
	// false and everything else is zero, or all fields are set.
	Detect(command, output string) DetectionResult

	sealed()
}

// MarkerPosition names where the caret of an error echo is expected.
type MarkerPosition string

const (
	// MarkerBeforeSlash requires the command match to contain a '/'.
	MarkerBeforeSlash MarkerPosition = "before_slash"
	// MarkerAtChar requires the caret to fall inside the command match.
	MarkerAtChar MarkerPosition = "at_char"
	// MarkerEndOfCommand requires the caret in the last 30% of its line.
	MarkerEndOfCommand MarkerPosition = "end_of_command"
)

// Valid reports whether p is a known marker position.
func (p MarkerPosition) Valid() bool {
	switch p {
	case MarkerBeforeSlash, MarkerAtChar, MarkerEndOfCommand:
		return true
	}
	return false
}

// MarkerCheck optionally constrains the caret position in the output.
type MarkerCheck struct {
	Enabled          bool           `json:"enabled"`
	ExpectedPosition MarkerPosition `json:"expected_position"`
}

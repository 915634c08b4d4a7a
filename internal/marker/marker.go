// Package marker reads Cisco IOS style error echoes: it finds the caret that
// points at the offending input and works out which command word it marks,
// and it infers the CLI mode from prompt text.
package marker

import (
	"strings"
	"unicode"
)

// Caret is the character IOS prints under the offending input.
const Caret = '^'

// promptChars end an IOS prompt ("Switch#", "Router>").
const promptChars = "#>"

// Location describes the caret line of an error echo and the command echo
// printed just above it.
type Location struct {
	// Line is the first output line containing a caret.
	Line string
	// Column is the byte offset of the caret in Line.
	Column int
	// Echo is the line preceding Line.
	Echo string
	// CommandText is Echo with the prompt stripped.
	CommandText string
	// Offset is where CommandText starts in Echo.
	Offset int
}

// Position returns the caret column relative to CommandText. It can be
// negative when the caret sits under the prompt.
func (l Location) Position() int {
	return l.Column - l.Offset
}

// Locate finds the first caret line in output. It fails when output has no
// caret or the caret is on the first line, since there is no echo to mark.
func Locate(output string) (Location, bool) {
	if !strings.ContainsRune(output, Caret) {
		return Location{}, false
	}
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		col := strings.IndexRune(line, Caret)
		if col < 0 {
			continue
		}
		if i == 0 {
			return Location{}, false
		}
		echo := lines[i-1]
		offset := 0
		if idx := strings.LastIndexAny(echo, promptChars); idx >= 0 {
			offset = idx + 1
		}
		return Location{
			Line:        line,
			Column:      col,
			Echo:        echo,
			CommandText: echo[offset:],
			Offset:      offset,
		}, true
	}
	return Location{}, false
}

// Word is one whitespace-delimited token of a command.
type Word struct {
	Text  string
	Index int
	Start int // byte offset of the first character
	End   int // byte offset one past the last character
}

// Words splits text on whitespace, keeping each token's byte span.
func Words(text string) []Word {
	var words []Word
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, Word{Text: text[start:i], Index: len(words), Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: text[start:], Index: len(words), Start: start, End: len(text)})
	}
	return words
}

// ExtractWordAtMarker returns the command word the caret in output points
// at. A caret in the gap before a word marks that word; a caret past the
// last word marks the last word. Only the echo in output is read; command
// is kept for symmetry with pattern detection.
func ExtractWordAtMarker(command, output string) (Word, bool) {
	loc, ok := Locate(output)
	if !ok {
		return Word{}, false
	}
	return WordAt(loc.CommandText, loc.Position())
}

// WordAt returns the word of text covering byte position pos, using the
// same rules as ExtractWordAtMarker.
func WordAt(text string, pos int) (Word, bool) {
	if pos < 0 || pos > len(text) {
		return Word{}, false
	}
	words := Words(text)
	if len(words) == 0 {
		return Word{}, false
	}
	for _, w := range words {
		if pos < w.End {
			return w, true
		}
	}
	return words[len(words)-1], true
}

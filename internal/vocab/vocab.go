// Package vocab holds the mode-keyed IOS command vocabulary and the fuzzy
// lookup used to suggest a keyword for a mistyped word.
package vocab

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/iosdiag/internal/logging"
	"github.com/abhisek/iosdiag/internal/schema"
)

// CommonKeywords is the bucket merged into every mode-scoped lookup.
const CommonKeywords = "common_keywords"

//go:embed data/cisco_commands.json
var embeddedVocabulary []byte

// fileSchema is the JSON shape of a vocabulary file.
var fileSchema = &schema.Schema{
	Name: "command-vocabulary",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"commands": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{"commands"},
	},
}

// fallbackCommands is used when no vocabulary source can be read.
var fallbackCommands = map[string][]string{
	CommonKeywords: {
		"show", "configure", "interface", "hostname", "ip", "address",
		"enable", "exit", "end", "no", "shutdown", "router",
	},
}

// Vocabulary maps a CLI mode name to the keywords valid in that mode.
// It is read-only after construction.
type Vocabulary struct {
	commands map[string][]string
}

// New builds a vocabulary from a mode → keywords map. The map is copied.
func New(commands map[string][]string) *Vocabulary {
	cp := make(map[string][]string, len(commands))
	for mode, kws := range commands {
		cp[mode] = slices.Clone(kws)
	}
	return &Vocabulary{commands: cp}
}

// Parse decodes and validates a vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	if _, err := schema.Decode(fileSchema, data); err != nil {
		return nil, err
	}
	var f struct {
		Commands map[string][]string `json:"commands"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	return New(f.Commands), nil
}

// Load reads a vocabulary file from disk.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return v, nil
}

// LoadOrFallback loads path, degrading to the built-in fallback keywords
// when it cannot be read or parsed.
func LoadOrFallback(path string, logger *zap.Logger) *Vocabulary {
	logger = logging.OrNop(logger)
	v, err := Load(path)
	if err != nil {
		logger.Warn("command vocabulary unavailable, using fallback keywords",
			zap.String("path", path),
			zap.Error(err),
		)
		return Fallback()
	}
	logger.Info("command vocabulary loaded",
		zap.String("path", path),
		zap.Int("modes", len(v.commands)),
	)
	return v
}

// Fallback returns the minimal built-in vocabulary.
func Fallback() *Vocabulary {
	return New(fallbackCommands)
}

var defaultVocabulary = sync.OnceValue(func() *Vocabulary {
	v, err := Parse(embeddedVocabulary)
	if err != nil {
		return Fallback()
	}
	return v
})

// Default returns the vocabulary compiled into the binary. It is parsed once
// per process.
func Default() *Vocabulary {
	return defaultVocabulary()
}

// Modes returns the mode names in sorted order, including CommonKeywords.
func (v *Vocabulary) Modes() []string {
	modes := make([]string, 0, len(v.commands))
	for m := range v.commands {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// Commands returns the keywords configured for mode.
func (v *Vocabulary) Commands(mode string) []string {
	return slices.Clone(v.commands[mode])
}

// HasMode reports whether mode is a configured mode bucket.
func (v *Vocabulary) HasMode(mode string) bool {
	if mode == CommonKeywords {
		return false
	}
	_, ok := v.commands[mode]
	return ok
}

// Candidates returns the lower-cased, de-duplicated, sorted keyword set a
// lookup in mode searches: the mode's keywords plus CommonKeywords when mode
// is known, every keyword otherwise.
func (v *Vocabulary) Candidates(mode string) []string {
	seen := make(map[string]struct{})
	add := func(kws []string) {
		for _, kw := range kws {
			seen[strings.ToLower(kw)] = struct{}{}
		}
	}

	if v.HasMode(mode) {
		add(v.commands[mode])
		add(v.commands[CommonKeywords])
	} else {
		for _, kws := range v.commands {
			add(kws)
		}
	}

	out := make([]string, 0, len(seen))
	for kw := range seen {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

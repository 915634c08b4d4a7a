package diagnosis

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/iosdiag/internal/logging"
)

// Registry holds validated patterns sorted by priority, highest first.
// Patterns of equal priority keep their registration order.
type Registry struct {
	mu       sync.RWMutex
	patterns []Pattern
	byID     map[string]Pattern
	sources  map[string]string

	logger    *zap.Logger
	suggester Suggester
}

// NewRegistry creates an empty registry. The suggester is handed to fuzzy
// patterns built by the loader; nil means the built-in vocabulary.
func NewRegistry(logger *zap.Logger, suggester Suggester) *Registry {
	return &Registry{
		byID:      make(map[string]Pattern),
		sources:   make(map[string]string),
		logger:    logging.OrNop(logger),
		suggester: suggester,
	}
}

// Register adds p. It fails with a *ValidationError wrapping
// ErrDuplicatePattern if the id is taken.
func (r *Registry) Register(p Pattern) error {
	return r.register(p, "")
}

func (r *Registry) register(p Pattern, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID()]; ok {
		return &ValidationError{
			Source:    sourceName(source),
			Index:     -1,
			PatternID: p.ID(),
			Err:       fmt.Errorf("%w (first loaded from %s)", ErrDuplicatePattern, sourceName(r.sources[p.ID()])),
		}
	}
	r.patterns = append(r.patterns, p)
	r.byID[p.ID()] = p
	r.sources[p.ID()] = source

	slices.SortStableFunc(r.patterns, func(a, b Pattern) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})

	r.logger.Debug("pattern registered",
		zap.String("pattern_id", p.ID()),
		zap.Int("priority", p.Priority()),
	)
	return nil
}

func sourceName(s string) string {
	if s == "" {
		return "code"
	}
	return s
}

// All returns a copy of the patterns in evaluation order.
func (r *Registry) All() []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.patterns)
}

// Get returns the pattern registered under id.
func (r *Registry) Get(id string) (Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// Source returns where the pattern with id was loaded from. Patterns
// registered from code report "".
func (r *Registry) Source(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[id]
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// Clear removes every pattern.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = nil
	r.byID = make(map[string]Pattern)
	r.sources = make(map[string]string)
}

// RegistryStats summarises a registry.
type RegistryStats struct {
	TotalPatterns        int         `json:"total_patterns" yaml:"total_patterns"`
	PatternIDs           []string    `json:"pattern_ids" yaml:"pattern_ids"`
	PriorityDistribution map[int]int `json:"priority_distribution" yaml:"priority_distribution"`
}

// Stats reports pattern ids in evaluation order and counts per priority.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := RegistryStats{
		TotalPatterns:        len(r.patterns),
		PatternIDs:           make([]string, 0, len(r.patterns)),
		PriorityDistribution: make(map[int]int),
	}
	for _, p := range r.patterns {
		s.PatternIDs = append(s.PatternIDs, p.ID())
		s.PriorityDistribution[p.Priority()]++
	}
	return s
}

package diagnosis

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/iosdiag/internal/logging"
)

// Context carries optional caller state for a detection.
type Context struct {
	// CurrentMode, when set, skips patterns whose affected modes exclude it.
	CurrentMode string `json:"current_mode,omitempty" yaml:"current_mode,omitempty"`
	DeviceID    string `json:"device_id,omitempty" yaml:"device_id,omitempty"`
}

// BatchItem is one command and the output it produced.
type BatchItem struct {
	Command string `json:"command" yaml:"command"`
	Output  string `json:"output" yaml:"output"`
}

// Detector evaluates a snapshot of a registry's patterns. Registry changes
// are only seen after Reload. Detection is safe for concurrent use.
type Detector struct {
	registry *Registry
	logger   *zap.Logger

	mu       sync.RWMutex
	patterns []Pattern
}

// NewDetector snapshots reg.
func NewDetector(reg *Registry, logger *zap.Logger) *Detector {
	d := &Detector{
		registry: reg,
		logger:   logging.OrNop(logger),
		patterns: reg.All(),
	}
	d.logger.Info("detector initialized", zap.Int("patterns", len(d.patterns)))
	return d
}

// Registry returns the registry the detector snapshots.
func (d *Detector) Registry() *Registry { return d.registry }

// Reload re-snapshots the registry.
func (d *Detector) Reload() {
	patterns := d.registry.All()
	d.mu.Lock()
	d.patterns = patterns
	d.mu.Unlock()
	d.logger.Info("detector patterns reloaded", zap.Int("patterns", len(patterns)))
}

func (d *Detector) snapshot() []Pattern {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.patterns
}

// Detect returns the result of the first pattern, in priority order, that
// matches command and output, or nil when none does.
func (d *Detector) Detect(command, output string, dctx *Context) *DetectionResult {
	mode := ""
	if dctx != nil {
		mode = dctx.CurrentMode
	}

	for _, p := range d.snapshot() {
		if mode != "" {
			if modes := p.AffectedModes(); len(modes) > 0 && !slices.Contains(modes, mode) {
				d.logger.Debug("pattern skipped for mode",
					zap.String("pattern_id", p.ID()),
					zap.String("mode", mode),
				)
				continue
			}
		}

		d.logger.Debug("checking pattern",
			zap.String("pattern_id", p.ID()),
			zap.Int("priority", p.Priority()),
		)
		res := p.Detect(command, output)
		if res.Matched {
			d.logger.Info("pattern matched",
				zap.String("pattern_id", p.ID()),
				zap.String("error_type", res.ErrorType),
			)
			return &res
		}
	}

	d.logger.Debug("no pattern matched", zap.String("command", command))
	return nil
}

// DetectBatch runs Detect over items in order with a shared context.
func (d *Detector) DetectBatch(items []BatchItem, dctx *Context) []*DetectionResult {
	out := make([]*DetectionResult, len(items))
	for i, it := range items {
		out[i] = d.Detect(it.Command, it.Output, dctx)
	}
	return out
}

// DetectBatchParallel is DetectBatch spread over up to limit goroutines.
// Results keep input order. It stops early when ctx is cancelled.
func (d *Detector) DetectBatchParallel(ctx context.Context, items []BatchItem, dctx *Context, limit int) ([]*DetectionResult, error) {
	out := make([]*DetectionResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = d.Detect(it.Command, it.Output, dctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PatternsByType returns the patterns reporting errorType, in priority order.
func (d *Detector) PatternsByType(errorType string) []Pattern {
	var out []Pattern
	for _, p := range d.snapshot() {
		if p.ErrorType() == errorType {
			out = append(out, p)
		}
	}
	return out
}

// PatternsByPriority returns the patterns with priority at least
// minPriority.
func (d *Detector) PatternsByPriority(minPriority int) []Pattern {
	var out []Pattern
	for _, p := range d.snapshot() {
		if p.Priority() >= minPriority {
			out = append(out, p)
		}
	}
	return out
}

// Patterns returns the snapshot in evaluation order.
func (d *Detector) Patterns() []Pattern {
	return slices.Clone(d.snapshot())
}

// DetectorStats summarises a detector's snapshot and its registry.
type DetectorStats struct {
	TotalPatterns int            `json:"total_patterns" yaml:"total_patterns"`
	ErrorTypes    map[string]int `json:"error_types" yaml:"error_types"`
	Registry      RegistryStats  `json:"registry_stats" yaml:"registry_stats"`
}

// Stats counts snapshot patterns per error type.
func (d *Detector) Stats() DetectorStats {
	patterns := d.snapshot()
	s := DetectorStats{
		TotalPatterns: len(patterns),
		ErrorTypes:    make(map[string]int),
		Registry:      d.registry.Stats(),
	}
	for _, p := range patterns {
		s.ErrorTypes[p.ErrorType()]++
	}
	return s
}

package diagnosis

import (
	"embed"
	"io/fs"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/abhisek/iosdiag/internal/logging"
)

// Default pattern sources, relative to the pattern root. Generated patterns
// load first, so they win any id clash with hardcoded ones.
const (
	DefaultGeneratedPath = "generated/patterns.json"
	DefaultHardcodedPath = "hardcoded.json"
)

//go:embed patterns
var embeddedPatterns embed.FS

// EmbeddedPatterns returns the pattern root compiled into the binary.
func EmbeddedPatterns() fs.FS {
	sub, err := fs.Sub(embeddedPatterns, "patterns")
	if err != nil {
		panic(err)
	}
	return sub
}

// Options selects the sources LoadDefaultPatterns reads.
type Options struct {
	Logger *zap.Logger
	// FS is the pattern root. Nil means EmbeddedPatterns.
	FS            fs.FS
	GeneratedPath string
	HardcodedPath string
	// Suggester backs fuzzy patterns. Nil means the built-in vocabulary.
	Suggester Suggester
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = EmbeddedPatterns()
	}
	if o.GeneratedPath == "" {
		o.GeneratedPath = DefaultGeneratedPath
	}
	if o.HardcodedPath == "" {
		o.HardcodedPath = DefaultHardcodedPath
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// LoadDefaultPatterns builds a registry from the generated source and then
// the hardcoded one. A source that fails to load is logged and skipped.
func LoadDefaultPatterns(opts Options) *Registry {
	opts = opts.withDefaults()
	reg := NewRegistry(opts.Logger, opts.Suggester)

	sources := []struct {
		kind string
		path string
	}{
		{"generated", opts.GeneratedPath},
		{"hardcoded", opts.HardcodedPath},
	}
	for _, src := range sources {
		if _, err := reg.LoadFS(opts.FS, src.path); err != nil {
			opts.Logger.Error("failed to load pattern source",
				zap.String("kind", src.kind),
				zap.String("source", src.path),
				zap.Error(err),
			)
		}
	}

	opts.Logger.Info("pattern registry initialized", zap.Int("patterns", reg.Len()))
	return reg
}

var (
	defaultMu       sync.Mutex
	defaultOptions  Options
	defaultDetector atomic.Pointer[Detector]
)

// SetDefaultOptions changes the sources of the process-wide detector and
// drops any detector already built from the old ones.
func SetDefaultOptions(opts Options) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultOptions = opts
	defaultDetector.Store(nil)
}

// DefaultDetector returns the process-wide detector, building it on first
// use. Concurrent first calls build it once.
func DefaultDetector() *Detector {
	if d := defaultDetector.Load(); d != nil {
		return d
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if d := defaultDetector.Load(); d != nil {
		return d
	}
	d := newDefaultDetector()
	defaultDetector.Store(d)
	return d
}

// ReloadDefaultDetector rebuilds the process-wide detector from its sources
// and returns it.
func ReloadDefaultDetector() *Detector {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	d := newDefaultDetector()
	defaultDetector.Store(d)
	return d
}

// newDefaultDetector requires defaultMu.
func newDefaultDetector() *Detector {
	opts := defaultOptions.withDefaults()
	opts.Logger.Info("building default detector")
	return NewDetector(LoadDefaultPatterns(opts), opts.Logger)
}

// Package config loads iosdiag configuration from an optional YAML file and
// IOSDIAG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/abhisek/iosdiag/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "IOSDIAG_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config is the full iosdiag configuration.
type Config struct {
	Patterns   PatternsConfig   `koanf:"patterns"`
	Vocabulary VocabularyConfig `koanf:"vocabulary"`
	Log        logging.Config   `koanf:"log"`
}

// PatternsConfig locates the two pattern sources. An empty Dir selects the
// pattern files compiled into the binary; Generated and Hardcoded are
// slash-separated paths relative to the pattern root.
type PatternsConfig struct {
	Dir       string `koanf:"dir"`
	Generated string `koanf:"generated"`
	Hardcoded string `koanf:"hardcoded"`
}

// VocabularyConfig locates the command vocabulary. Empty Path selects the
// built-in vocabulary.
type VocabularyConfig struct {
	Path string `koanf:"path"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Load reads configuration with the following precedence (highest first):
//  1. IOSDIAG_* environment variables (IOSDIAG_PATTERNS_DIR -> patterns.dir)
//  2. the YAML file at path, when path is non-empty
//  3. built-in defaults
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps IOSDIAG_SECTION_FIELD_NAME to section.field_name. Only the
// first underscore after the prefix separates the section.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Patterns.Generated == "" {
		cfg.Patterns.Generated = "generated/patterns.json"
	}
	if cfg.Patterns.Hardcoded == "" {
		cfg.Patterns.Hardcoded = "hardcoded.json"
	}
	def := logging.DefaultConfig()
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Format
	}
}

// Validate checks the configuration for values that can never work.
func (c *Config) Validate() error {
	var errs []error
	for name, p := range map[string]string{
		"patterns.generated": c.Patterns.Generated,
		"patterns.hardcoded": c.Patterns.Hardcoded,
	} {
		if !fs.ValidPath(p) {
			errs = append(errs, fmt.Errorf("%s: %q must be a relative slash-separated path", name, p))
		}
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}

// Package config contains the settings of a probe run.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/lbprobe/lbprobe/internal/dnsprobe"
	"github.com/lbprobe/lbprobe/internal/httpprobe"
	"github.com/lbprobe/lbprobe/internal/pacer"
	"github.com/lbprobe/lbprobe/internal/report"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings contains the settings of a probe run. Use [Default] to
// obtain settings initialized with the default values.
type Settings struct {
	// Count is the number of DNS lookups and of HTTP requests.
	Count int `yaml:"count"`

	// Delay is the minimum delay between two lookups or requests.
	Delay time.Duration `yaml:"delay"`

	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Threshold is the latency spread above which we consider
	// the variation of the response times significant.
	Threshold time.Duration `yaml:"threshold"`

	// Resolver is the DNS resolver address. Empty means the system resolver.
	Resolver string `yaml:"resolver"`

	// SkipFailed skips failed HTTP requests instead of discarding
	// all the samples at the first failure.
	SkipFailed bool `yaml:"skip_failed"`

	// UserAgent is the HTTP User-Agent header.
	UserAgent string `yaml:"user_agent"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		Count:     dnsprobe.DefaultCount,
		Delay:     pacer.DefaultDelay,
		Timeout:   httpprobe.DefaultTimeout,
		Threshold: report.DefaultThreshold,
		UserAgent: httpprobe.DefaultUserAgent,
	}
}

var (
	// ErrInvalidCount indicates that the count is not positive.
	ErrInvalidCount = errors.New("config: count must be positive")

	// ErrNegativeDuration indicates that a duration is negative.
	ErrNegativeDuration = errors.New("config: durations cannot be negative")

	// ErrInvalidThreshold indicates that the threshold is not positive.
	ErrInvalidThreshold = errors.New("config: threshold must be positive")
)

// Validate returns an error if the settings are not valid.
func (s *Settings) Validate() error {
	if s.Count <= 0 {
		return ErrInvalidCount
	}
	if s.Delay < 0 || s.Timeout < 0 {
		return ErrNegativeDuration
	}
	if s.Threshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}

// ReadConfig reads the YAML settings at path. Fields missing
// from the file keep their default value.
func ReadConfig(path string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML settings.
func ParseConfig(data []byte) (*Settings, error) {
	settings := Default()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating")
	}
	return &settings, nil
}

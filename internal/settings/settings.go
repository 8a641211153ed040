// Package settings holds the node-level witnessing settings. They are read
// from an optional YAML file and act as defaults for every request.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/script"
	"gopkg.in/yaml.v3"
)

// Settings are the node witnessing settings.
type Settings struct {
	// Paranoia is the percentage of retrieval paths that must agree.
	Paranoia       int           `yaml:"paranoia"`
	Proxies        []string      `yaml:"proxies,omitempty"`
	AllowUnproxied bool          `yaml:"allow_unproxied"`
	Timeout        time.Duration `yaml:"timeout"`
	// RateLimit is in retrievals per second. Zero disables limiting.
	RateLimit    float64       `yaml:"rate_limit,omitempty"`
	RateBurst    int           `yaml:"rate_burst,omitempty"`
	MaxInFlight  int           `yaml:"max_in_flight"`
	MaxBodySize  string        `yaml:"max_body_size"`
	UserAgents   []string      `yaml:"user_agents,omitempty"`
	ScriptLimits ScriptLimits  `yaml:"script_limits"`
	Interval     time.Duration `yaml:"interval"`
	Workers      int           `yaml:"workers"`
}

// ScriptLimits bound the size of scripts in request documents.
type ScriptLimits struct {
	MaxCalls int `yaml:"max_calls"`
	MaxDepth int `yaml:"max_depth"`
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	return &Settings{
		Paranoia:       51,
		AllowUnproxied: true,
		Timeout:        10 * time.Second,
		MaxInFlight:    16,
		MaxBodySize:    "8 MiB",
		ScriptLimits: ScriptLimits{
			MaxCalls: script.DefaultLimits.MaxCalls,
			MaxDepth: script.DefaultLimits.MaxDepth,
		},
		Interval: time.Minute,
		Workers:  4,
	}
}

// Load reads settings from path. An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings over the defaults and validates the result.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports every invalid field at once.
func (s *Settings) Validate() error {
	var errs []error
	if s.Paranoia < 1 || s.Paranoia > 100 {
		errs = append(errs, fmt.Errorf("paranoia must be within 1..100, got %d", s.Paranoia))
	}
	if s.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", s.Timeout))
	}
	if s.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %v", s.RateLimit))
	}
	if s.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("rate_burst must not be negative, got %d", s.RateBurst))
	}
	if s.MaxInFlight < 1 {
		errs = append(errs, fmt.Errorf("max_in_flight must be at least 1, got %d", s.MaxInFlight))
	}
	if _, err := s.BodyLimit(); err != nil {
		errs = append(errs, err)
	}
	if s.ScriptLimits.MaxCalls < 1 || s.ScriptLimits.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("script_limits must be positive, got %d calls and depth %d", s.ScriptLimits.MaxCalls, s.ScriptLimits.MaxDepth))
	}
	if s.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", s.Interval))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", s.Workers))
	}
	for _, p := range s.Proxies {
		if _, err := request.ParseProxy(p); err != nil {
			errs = append(errs, err)
		}
	}
	if !s.AllowUnproxied && len(s.Proxies) == 0 {
		errs = append(errs, errors.New("allow_unproxied is false but no proxies are configured"))
	}
	return errors.Join(errs...)
}

// BodyLimit parses MaxBodySize, which accepts values such as "8 MiB" or
// "500kB".
func (s *Settings) BodyLimit() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("max_body_size: %w", err)
	}
	if n == 0 || n > 1<<40 {
		return 0, fmt.Errorf("max_body_size %q is out of range", s.MaxBodySize)
	}
	return int64(n), nil
}

// Limits returns the script limits.
func (s *Settings) Limits() script.Limits {
	return script.Limits{MaxCalls: s.ScriptLimits.MaxCalls, MaxDepth: s.ScriptLimits.MaxDepth}
}

// RequestDefaults returns the values requests fall back to.
func (s *Settings) RequestDefaults() request.Defaults {
	return request.Defaults{
		Paranoia:       s.Paranoia,
		Proxies:        s.Proxies,
		AllowUnproxied: s.AllowUnproxied,
		Timeout:        s.Timeout,
		Limits:         s.Limits(),
	}
}

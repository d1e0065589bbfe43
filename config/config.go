// Package config loads tracer options from YAML.
//
// A file names an optional preset and then overrides individual settings:
//
//	preset: production
//	style: table
//	min_total_duration: 250ms
//	filters:
//	  hide_ultra_fast: 1ms
//	  group_similar: 5ms
//
// Durations use Go duration syntax. Fields left out keep the preset's value,
// or the library default when no preset is named.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zoobzio/spanz"
	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned when the preset name is not recognized.
var ErrUnknownPreset = errors.New("unknown preset")

var presets = map[string]func() spanz.Options{
	"debug":       spanz.DebugMode,
	"production":  spanz.ProductionMode,
	"development": spanz.DevelopmentMode,
	"performance": spanz.PerformanceMode,
}

// Duration is a time.Duration read from a YAML string such as "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) ptr() *time.Duration {
	if d == nil {
		return nil
	}
	v := time.Duration(*d)
	return &v
}

// Filters configures the smart filter stages. A nil field leaves the stage off.
type Filters struct {
	ShowSlowOnly  *Duration `yaml:"show_slow_only,omitempty"`
	HideUltraFast *Duration `yaml:"hide_ultra_fast,omitempty"`
	GroupSimilar  *Duration `yaml:"group_similar,omitempty"`
}

// File is the YAML document layout.
//
//nolint:govet // Field order follows the documented file layout
type File struct {
	Preset           string    `yaml:"preset,omitempty"`
	Enabled          *bool     `yaml:"enabled,omitempty"`
	Silent           *bool     `yaml:"silent,omitempty"`
	Style            string    `yaml:"style,omitempty"`
	Color            *bool     `yaml:"color,omitempty"`
	Always           bool      `yaml:"always,omitempty"`
	MinTotalDuration *Duration `yaml:"min_total_duration,omitempty"`
	MinSpanDuration  *Duration `yaml:"min_span_duration,omitempty"`
	Filters          Filters   `yaml:"filters,omitempty"`
}

// Load reads and parses the file at path.
func Load(path string) (spanz.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spanz.Options{}, fmt.Errorf("failed to read config: %w", err)
	}
	opts, err := Parse(data)
	if err != nil {
		return spanz.Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// Parse decodes a YAML document into Options. Unknown keys are rejected.
// An empty document yields empty Options.
func Parse(data []byte) (spanz.Options, error) {
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return spanz.Options{}, err
	}
	return f.Options()
}

// Decode reads a File from r without resolving it.
func Decode(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return f, nil
}

// Options resolves the file into tracer options: the preset first, then
// every field the file sets.
func (f File) Options() (spanz.Options, error) {
	var layers []spanz.Options

	if f.Preset != "" {
		preset, ok := presets[strings.ToLower(strings.TrimSpace(f.Preset))]
		if !ok {
			return spanz.Options{}, fmt.Errorf("%w %q", ErrUnknownPreset, f.Preset)
		}
		layers = append(layers, preset())
	}

	o := spanz.Options{
		Enabled:       f.Enabled,
		Silent:        f.Silent,
		Color:         f.Color,
		ShowSlowOnly:  f.Filters.ShowSlowOnly.ptr(),
		HideUltraFast: f.Filters.HideUltraFast.ptr(),
		GroupSimilar:  f.Filters.GroupSimilar.ptr(),
	}

	if f.Style != "" {
		style, err := spanz.ParseStyle(f.Style)
		if err != nil {
			return spanz.Options{}, err
		}
		o.Style = &style
	}

	switch {
	case f.Always:
		o.PrintCondition = spanz.Always()
	default:
		o.MinSpanDuration = f.MinSpanDuration.ptr()
		o.MinTotalDuration = f.MinTotalDuration.ptr()
	}

	layers = append(layers, o)
	return spanz.Merge(layers...), nil
}

// Presets returns the recognized preset names.
func Presets() []string {
	return []string{"debug", "development", "performance", "production"}
}

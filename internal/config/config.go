// Package config holds the benchmark profile: which workload to run, how
// many frames, and on which target.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	MinWorkload = 1
	MaxWorkload = 10

	defaultWorkload = 4
	defaultFrames   = 200
	defaultWarmup   = 10
	defaultWidth    = 900
	defaultHeight   = 600
)

// Benchmark is one benchmark profile.
type Benchmark struct {
	Workload  int  `yaml:"workload"`
	Frames    int  `yaml:"frames"`
	Warmup    int  `yaml:"warmup"`
	Offscreen bool `yaml:"offscreen"`
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	VSync     bool `yaml:"vsync"`
	// Seed fixes the noise texture.
	Seed uint64 `yaml:"seed"`
	// MaxFailures aborts a run after this many consecutive failed frames;
	// 0 never aborts.
	MaxFailures int `yaml:"max_failures"`
	// Snapshot, when set, is the BMP path for the last offscreen frame.
	Snapshot string `yaml:"snapshot,omitempty"`
	// Report, when set, is the YAML path for the run report.
	Report string `yaml:"report,omitempty"`
}

// Default returns the built-in profile.
func Default() Benchmark {
	return Benchmark{
		Workload:    defaultWorkload,
		Frames:      defaultFrames,
		Warmup:      defaultWarmup,
		Offscreen:   true,
		Width:       defaultWidth,
		Height:      defaultHeight,
		Seed:        1,
		MaxFailures: 10,
	}
}

// Normalize clamps every field to a usable value.
func (b *Benchmark) Normalize() {
	b.Workload = ClampWorkload(b.Workload)
	if b.Frames < 1 {
		b.Frames = 1
	}
	if b.Warmup < 0 {
		b.Warmup = 0
	}
	if b.Width < 1 {
		b.Width = defaultWidth
	}
	if b.Height < 1 {
		b.Height = defaultHeight
	}
	if b.MaxFailures < 0 {
		b.MaxFailures = 0
	}
}

// ClampWorkload clamps w to [MinWorkload, MaxWorkload].
func ClampWorkload(w int) int {
	if w < MinWorkload {
		return MinWorkload
	}
	if w > MaxWorkload {
		return MaxWorkload
	}
	return w
}

// Parse decodes a YAML profile over the defaults. Unknown keys are errors.
func Parse(r io.Reader) (Benchmark, error) {
	b := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return Benchmark{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	b.Normalize()
	return b, nil
}

// Load reads a YAML profile from path.
func Load(path string) (Benchmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Benchmark{}, fmt.Errorf("could not read profile: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

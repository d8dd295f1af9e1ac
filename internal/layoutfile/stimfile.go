package layoutfile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/openphosphene/prosthesim/internal/stimulus"
)

// StimFile is the YAML schema for a stimulus assignment: one shared sample
// interval in seconds plus per-electrode amplitude series in microamps. A
// channel may be a single number for a one-sample pulse.
type StimFile struct {
	Dt       float64              `yaml:"dt"`
	Channels map[string]FloatList `yaml:"channels"`
}

// LoadStimulus reads a stimulus document from path.
func LoadStimulus(path string) (*stimulus.Stimulus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStimulus(data)
}

// ParseStimulus decodes a stimulus document and builds the stimulus.
func ParseStimulus(data []byte) (*stimulus.Stimulus, error) {
	var f StimFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stimulus: %w", err)
	}
	return f.Build()
}

// Build converts the document into a stimulus. Channels register in sorted
// name order so Keys and previews are stable across runs.
func (f *StimFile) Build() (*stimulus.Stimulus, error) {
	if f.Dt <= 0 {
		return nil, fmt.Errorf("stimulus: dt must be positive, got %g", f.Dt)
	}
	if len(f.Channels) == 0 {
		return nil, fmt.Errorf("stimulus: no channels defined")
	}
	names := make([]string, 0, len(f.Channels))
	for name := range f.Channels {
		names = append(names, name)
	}
	sort.Strings(names)
	s := stimulus.New(f.Dt)
	for _, name := range names {
		s.Set(name, f.Channels[name])
	}
	return s, nil
}

package layoutfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStim = `
dt: 0.5
channels:
  A1: [0, 10, 20, 10, 0]
  B2: 15
`

func TestParseStimulus(t *testing.T) {
	t.Parallel()

	s, err := ParseStimulus([]byte(sampleStim))
	require.NoError(t, err)

	assert.Equal(t, 0.5, s.Dt())
	assert.ElementsMatch(t, []string{"A1", "B2"}, s.Keys())
	assert.Equal(t, []float64{0, 10, 20, 10, 0}, s.Samples("A1"))
	// Scalar channels become one-sample pulses.
	assert.Equal(t, []float64{15}, s.Samples("B2"))
	assert.Equal(t, 20.0, s.MaxAmplitude())
}

func TestParseStimulusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"zero dt", "dt: 0\nchannels:\n  A1: 5\n", "dt"},
		{"negative dt", "dt: -1\nchannels:\n  A1: 5\n", "dt"},
		{"no channels", "dt: 0.5\n", "channels"},
		{"bad yaml", "dt: [\n", "parse stimulus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseStimulus([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseStimulusChannelOrder(t *testing.T) {
	t.Parallel()

	doc := `
dt: 0.2
channels:
  C3: 5
  A1: 5
  B10: 5
  B2: 5
  A2: 5
`
	// Channel order must not depend on map iteration.
	want := []string{"A1", "A2", "B10", "B2", "C3"}
	for i := 0; i < 10; i++ {
		s, err := ParseStimulus([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, want, s.Keys())
	}
}

func TestLoadStimulus(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleStim), 0o644))

	s, err := LoadStimulus(path)
	require.NoError(t, err)
	assert.Equal(t, 5, s.NSamples())
	assert.Equal(t, 2.5, s.Duration())

	_, err = LoadStimulus(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

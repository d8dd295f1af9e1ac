// Package stimulus carries per-electrode amplitude series for an implant.
// Channels are keyed by electrode key strings so geometry and stimulation
// stay decoupled; rendering matches them back up by key.
package stimulus

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
)

// Stimulus is an ordered set of amplitude sample series on a shared uniform
// time step. Amplitudes are in microamps, the time step in seconds.
type Stimulus struct {
	dt       float64
	order    []string
	channels map[string][]float64
}

// New creates an empty stimulus with dt seconds between samples.
func New(dt float64) *Stimulus {
	return &Stimulus{dt: dt, channels: make(map[string][]float64)}
}

// Dt returns the sample interval in seconds.
func (s *Stimulus) Dt() float64 { return s.dt }

// Set assigns the amplitude series for an electrode key. A key keeps its
// original position when its series is replaced; new keys append.
func (s *Stimulus) Set(key string, samples []float64) {
	if _, ok := s.channels[key]; !ok {
		s.order = append(s.order, key)
	}
	s.channels[key] = samples
}

// Keys returns the channel keys in registration order.
func (s *Stimulus) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether key carries a channel.
func (s *Stimulus) Has(key string) bool {
	_, ok := s.channels[key]
	return ok
}

// Samples returns the series for key, nil when absent.
func (s *Stimulus) Samples(key string) []float64 {
	return s.channels[key]
}

// NSamples returns the longest channel length.
func (s *Stimulus) NSamples() int {
	n := 0
	for _, samples := range s.channels {
		if len(samples) > n {
			n = len(samples)
		}
	}
	return n
}

// Duration returns the stimulus duration in seconds.
func (s *Stimulus) Duration() float64 {
	return float64(s.NSamples()) * s.dt
}

// Peak returns the largest absolute amplitude on key's channel, or 0 when
// the key is absent. Cathodic (negative) phases count toward the peak.
func (s *Stimulus) Peak(key string) float64 {
	peak := 0.0
	for _, v := range s.channels[key] {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// MaxAmplitude returns the largest absolute amplitude across all channels.
// Rendering normalizes its colormap against this value.
func (s *Stimulus) MaxAmplitude() float64 {
	max := 0.0
	for _, key := range s.order {
		if p := s.Peak(key); p > max {
			max = p
		}
	}
	return max
}

// Preview renders one channel as an ASCII waveform for terminal inspection.
func (s *Stimulus) Preview(key string, width, height int) (string, error) {
	samples, ok := s.channels[key]
	if !ok {
		return "", fmt.Errorf("stimulus: no channel for key %q", key)
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("stimulus: channel %q is empty", key)
	}
	caption := fmt.Sprintf("%s (uA over %.1f ms)", key, float64(len(samples))*s.dt*1000)
	return asciigraph.Plot(samples,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}

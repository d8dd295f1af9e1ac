// Package percept defines the interfaces a perceptual model collaborator
// satisfies, plus an inert scaffold with the build/predict lifecycle wired
// through. Response math lives outside this toolkit; the scaffold predicts
// nothing and says so.
package percept

import (
	"errors"

	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/stimulus"
)

// Model lifecycle errors.
var (
	// ErrNotImplemented is returned by scaffold predictions: the response
	// model is an external collaborator.
	ErrNotImplemented = errors.New("percept: model response not implemented")

	// ErrNotBuilt is returned when Predict runs before Build.
	ErrNotBuilt = errors.New("percept: model must be built before predicting")
)

// Percept is a predicted brightness movie: one spatial frame per time point.
type Percept struct {
	Frames [][]float64
	Times  []float64 // seconds, aligned with Frames
}

// SpatialModel turns electrode geometry and a stimulus into instantaneous
// spatial brightness.
type SpatialModel interface {
	// BuildSpatial precomputes whatever the model needs from the grid
	// geometry. It runs once per Build.
	BuildSpatial(grid *implant.ElectrodeGrid) error
	PredictSpatial(grid *implant.ElectrodeGrid, stim *stimulus.Stimulus) (*Percept, error)
}

// TemporalModel resamples a spatial response onto perceptual time points.
type TemporalModel interface {
	BuildTemporal() error
	PredictTemporal(p *Percept, times []float64) (*Percept, error)
}

// Model composes a spatial and a temporal stage behind one build/predict
// lifecycle. Either stage may be nil, in which case it is skipped.
type Model struct {
	Spatial  SpatialModel
	Temporal TemporalModel

	grid  *implant.ElectrodeGrid
	built bool
}

// NewModel composes the given stages into an unbuilt model.
func NewModel(spatial SpatialModel, temporal TemporalModel) *Model {
	return &Model{Spatial: spatial, Temporal: temporal}
}

// NewScaffoldModel returns a model whose stages are wired but inert; its
// predictions fail with ErrNotImplemented.
func NewScaffoldModel() *Model {
	return NewModel(ScaffoldSpatial{}, ScaffoldTemporal{})
}

// Build prepares both stages against the grid geometry. It must run before
// Predict, and again after the grid changes.
func (m *Model) Build(grid *implant.ElectrodeGrid) error {
	if m.Spatial != nil {
		if err := m.Spatial.BuildSpatial(grid); err != nil {
			return err
		}
	}
	if m.Temporal != nil {
		if err := m.Temporal.BuildTemporal(); err != nil {
			return err
		}
	}
	m.grid = grid
	m.built = true
	return nil
}

// IsBuilt reports whether Build has completed.
func (m *Model) IsBuilt() bool { return m.built }

// Predict runs the spatial stage on the stimulus and the temporal stage on
// its output, sampled at the given time points. A model with no stages has
// nothing to predict with and fails with ErrNotImplemented.
func (m *Model) Predict(stim *stimulus.Stimulus, times []float64) (*Percept, error) {
	if !m.built {
		return nil, ErrNotBuilt
	}
	if m.Spatial == nil && m.Temporal == nil {
		return nil, ErrNotImplemented
	}
	var (
		p   *Percept
		err error
	)
	if m.Spatial != nil {
		p, err = m.Spatial.PredictSpatial(m.grid, stim)
		if err != nil {
			return nil, err
		}
	}
	if m.Temporal != nil {
		p, err = m.Temporal.PredictTemporal(p, times)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ScaffoldSpatial is the placeholder spatial stage: building succeeds,
// predicting reports ErrNotImplemented.
type ScaffoldSpatial struct{}

func (ScaffoldSpatial) BuildSpatial(*implant.ElectrodeGrid) error { return nil }

func (ScaffoldSpatial) PredictSpatial(*implant.ElectrodeGrid, *stimulus.Stimulus) (*Percept, error) {
	return nil, ErrNotImplemented
}

// ScaffoldTemporal is the placeholder temporal stage.
type ScaffoldTemporal struct{}

func (ScaffoldTemporal) BuildTemporal() error { return nil }

func (ScaffoldTemporal) PredictTemporal(*Percept, []float64) (*Percept, error) {
	return nil, ErrNotImplemented
}

// Package layoutfile reads and writes declarative grid layouts as YAML.
// A layout names the same parameters NewElectrodeGrid takes, so files,
// catalog records, and API payloads share one schema.
package layoutfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openphosphene/prosthesim/internal/implant"
)

// FloatList accepts either a single YAML number or a sequence of numbers.
// It marshals a single value back to a scalar.
type FloatList []float64

func (f *FloatList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*f = FloatList{v}
		return nil
	case yaml.SequenceNode:
		var v []float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*f = FloatList(v)
		return nil
	}
	return fmt.Errorf("line %d: expected a number or a list of numbers", value.Line)
}

func (f FloatList) MarshalYAML() (interface{}, error) {
	if len(f) == 1 {
		return f[0], nil
	}
	return []float64(f), nil
}

// Layout is the YAML schema for a grid definition.
type Layout struct {
	Name        string    `yaml:"name,omitempty"`
	Rows        int       `yaml:"rows"`
	Cols        int       `yaml:"cols"`
	Spacing     FloatList `yaml:"spacing,flow"`
	Type        string    `yaml:"type,omitempty"`
	Orientation string    `yaml:"orientation,omitempty"`
	RotationDeg float64   `yaml:"rotation_deg,omitempty"`
	X           float64   `yaml:"x,omitempty"`
	Y           float64   `yaml:"y,omitempty"`
	Z           FloatList `yaml:"z,omitempty,flow"`
	Kind        string    `yaml:"kind,omitempty"`
	R           FloatList `yaml:"r,omitempty,flow"`
	A           float64   `yaml:"a,omitempty"`
	NameRows    string    `yaml:"name_rows,omitempty"`
	NameCols    string    `yaml:"name_cols,omitempty"`
	Names       []string  `yaml:"names,omitempty,flow"`
}

// Load reads a layout document from path.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a layout document.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return &l, nil
}

// Save writes a layout document to path.
func Save(path string, l *Layout) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes the layout as YAML.
func (l *Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}

// Params converts the layout into grid parameters. Errors name the
// offending field; geometric validation happens in NewElectrodeGrid.
func (l *Layout) Params() (implant.GridParams, error) {
	p := implant.GridParams{
		Rows:        l.Rows,
		Cols:        l.Cols,
		X:           l.X,
		Y:           l.Y,
		Rot:         l.RotationDeg,
		Tiling:      implant.Tiling(l.Type),
		Orientation: implant.Orientation(l.Orientation),
		Kind:        l.Kind,
		Names: implant.NameSpec{
			Row:  l.NameRows,
			Col:  l.NameCols,
			List: l.Names,
		},
	}

	switch len(l.Spacing) {
	case 1:
		p.Spacing = implant.UniformSpacing(l.Spacing[0])
	case 2:
		p.Spacing = implant.AxisSpacing(l.Spacing[0], l.Spacing[1])
	default:
		return p, fmt.Errorf("layout %q: spacing wants one value or [x, y], got %d values", l.Name, len(l.Spacing))
	}

	switch len(l.Z) {
	case 0:
	case 1:
		p.Z = l.Z[0]
	default:
		p.ZList = l.Z
	}

	switch len(l.R) {
	case 0:
	case 1:
		p.R = l.R[0]
	default:
		p.RList = l.R
	}

	if l.A != 0 {
		p.Extra = implant.Params{"a": l.A}
	}
	return p, nil
}

// Build materializes the layout into an electrode grid.
func (l *Layout) Build() (*implant.ElectrodeGrid, error) {
	p, err := l.Params()
	if err != nil {
		return nil, err
	}
	return implant.NewElectrodeGrid(p)
}

// FromParams captures grid parameters as a layout document, the inverse of
// Params up to spacing and override normalization.
func FromParams(name string, p implant.GridParams) *Layout {
	l := &Layout{
		Name:        name,
		Rows:        p.Rows,
		Cols:        p.Cols,
		Type:        string(p.Tiling),
		Orientation: string(p.Orientation),
		RotationDeg: p.Rot,
		X:           p.X,
		Y:           p.Y,
		Kind:        p.Kind,
		NameRows:    p.Names.Row,
		NameCols:    p.Names.Col,
		Names:       p.Names.List,
	}
	if p.Spacing.Uniform {
		l.Spacing = FloatList{p.Spacing.X}
	} else {
		l.Spacing = FloatList{p.Spacing.X, p.Spacing.Y}
	}
	if len(p.ZList) > 0 {
		l.Z = FloatList(p.ZList)
	} else if p.Z != 0 {
		l.Z = FloatList{p.Z}
	}
	if len(p.RList) > 0 {
		l.R = FloatList(p.RList)
	} else if p.R != 0 {
		l.R = FloatList{p.R}
	}
	if p.Extra != nil {
		l.A = p.Extra["a"]
	}
	return l
}

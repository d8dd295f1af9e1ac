package implant

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// Tiling selects the grid arrangement.
type Tiling string

const (
	RectTiling Tiling = "rect"
	HexTiling  Tiling = "hex"
)

// Orientation selects which axis receives the hexagonal half-step stagger.
type Orientation string

const (
	// Horizontal staggers every other row along x.
	Horizontal Orientation = "horizontal"
	// Vertical staggers every other column along y.
	Vertical Orientation = "vertical"
)

// Spacing is the center-to-center electrode distance in microns, either
// isotropic or split by axis.
type Spacing struct {
	X, Y    float64
	Uniform bool
}

// UniformSpacing spaces electrodes s microns apart on both axes. Hexagonal
// grids scale the staggered axis by sqrt(3)/2 so that lateral neighbor
// distance stays s.
func UniformSpacing(s float64) Spacing { return Spacing{X: s, Y: s, Uniform: true} }

// AxisSpacing sets column (x) and row (y) spacing separately. Hexagonal
// grids apply no adjustment to axis spacing.
func AxisSpacing(x, y float64) Spacing { return Spacing{X: x, Y: y} }

// NameSpec controls how grid electrodes are named: either a Row/Col scheme
// pair or an explicit List of rows*cols names. A scheme is alphabetic
// ("A": bijective base-26) or numeric ("1": 1..n); a leading "-" reverses
// that axis. The zero value means rows "A", columns "1".
type NameSpec struct {
	Row, Col string
	List     []string
}

// GridParams configures NewElectrodeGrid. The zero value (plus positive
// Rows, Cols, and Spacing) gives a rectangular grid of point electrodes
// centered at the origin, rows lettered and columns numbered.
type GridParams struct {
	Rows, Cols  int
	Spacing     Spacing
	X, Y        float64 // grid center in microns
	Z           float64 // common height; ZList overrides per electrode
	ZList       []float64
	Rot         float64 // rotation in degrees, counterclockwise
	Names       NameSpec
	Tiling      Tiling
	Orientation Orientation
	Kind        string // electrode kind in the registry; empty means point
	R           float64
	RList       []float64
	Extra       Params // forwarded to the kind factory, e.g. "a" for square
}

// ElectrodeGrid arranges rows x cols electrodes in a rectangular or
// hexagonal tiling. It owns the ElectrodeArray holding the materialized
// electrodes and extends lookup with (row, col) addressing. Shape and
// spacing describe the construction; they go stale if electrodes are added
// or removed afterwards.
type ElectrodeGrid struct {
	array       *ElectrodeArray
	rows, cols  int
	spacing     Spacing
	tiling      Tiling
	orientation Orientation
	rot         float64
}

// NewElectrodeGrid materializes a grid from p. Validation happens up front:
// no electrode exists if construction fails. Electrodes are generated
// row-major, named by the naming spec, and inserted under their names; that
// insertion order is the canonical order for flat indexing.
func NewElectrodeGrid(p GridParams) (*ElectrodeGrid, error) {
	if p.Tiling == "" {
		p.Tiling = RectTiling
	}
	if p.Orientation == "" {
		p.Orientation = Horizontal
	}
	if p.Kind == "" {
		p.Kind = KindPoint
	}

	if p.Rows < 1 || p.Cols < 1 {
		return nil, fmt.Errorf("grid shape %dx%d: %w", p.Rows, p.Cols, ErrBadShape)
	}
	if p.Tiling != RectTiling && p.Tiling != HexTiling {
		return nil, fmt.Errorf("tiling %q: %w", p.Tiling, ErrBadTiling)
	}
	if p.Orientation != Horizontal && p.Orientation != Vertical {
		return nil, fmt.Errorf("orientation %q: %w", p.Orientation, ErrBadOrientation)
	}
	kind, ok := GetKind(p.Kind)
	if !ok {
		return nil, fmt.Errorf("electrode kind %q: %w", p.Kind, ErrUnknownKind)
	}
	if kind.RequiresRadius && p.R == 0 && len(p.RList) == 0 {
		return nil, fmt.Errorf("kind %q: %w", p.Kind, ErrMissingRadius)
	}

	n := p.Rows * p.Cols
	names, err := gridNames(p.Names, p.Rows, p.Cols)
	if err != nil {
		return nil, err
	}

	zs := p.ZList
	if len(zs) > 0 {
		if len(zs) != n {
			return nil, fmt.Errorf("z overrides need %d entries, got %d: %w", n, len(zs), ErrLengthMismatch)
		}
	} else {
		zs = make([]float64, n)
		for i := range zs {
			zs[i] = p.Z
		}
	}

	var rs []float64
	if kind.RequiresRadius {
		if len(p.RList) > 0 {
			if len(p.RList) != n {
				return nil, fmt.Errorf("radius overrides need %d entries, got %d: %w", n, len(p.RList), ErrLengthMismatch)
			}
			rs = p.RList
		} else {
			rs = make([]float64, n)
			for i := range rs {
				rs[i] = p.R
			}
		}
	}

	px, py := gridLattice(p.Rows, p.Cols, p.Spacing, p.Tiling, p.Orientation)

	// Rotate about the origin, then translate the center to (X, Y).
	sin, cos := math.Sincos(p.Rot * math.Pi / 180)
	for k := 0; k < n; k++ {
		rx := cos*px[k] - sin*py[k]
		ry := sin*px[k] + cos*py[k]
		px[k] = rx + p.X
		py[k] = ry + p.Y
	}

	array := &ElectrodeArray{byKey: make(map[Key]Electrode, n)}
	for k := 0; k < n; k++ {
		params := make(Params, len(p.Extra)+1)
		for key, v := range p.Extra {
			params[key] = v
		}
		if rs != nil {
			params["r"] = rs[k]
		}
		e, err := kind.New(px[k], py[k], zs[k], names[k], params)
		if err != nil {
			return nil, fmt.Errorf("electrode %q: %w", names[k], err)
		}
		if err := array.AddElectrode(KeyName(names[k]), e); err != nil {
			return nil, err
		}
	}

	return &ElectrodeGrid{
		array:       array,
		rows:        p.Rows,
		cols:        p.Cols,
		spacing:     p.Spacing,
		tiling:      p.Tiling,
		orientation: p.Orientation,
		rot:         p.Rot,
	}, nil
}

// gridLattice computes the flattened row-major (x, y) lattice centered on
// the origin, before rotation and translation.
func gridLattice(rows, cols int, spacing Spacing, tiling Tiling, orientation Orientation) ([]float64, []float64) {
	xSpc, ySpc := spacing.X, spacing.Y
	if spacing.Uniform && tiling == HexTiling {
		// Scale the stagger axis so lateral neighbors sit spacing apart.
		if orientation == Horizontal {
			ySpc = xSpc * math.Sqrt(3) / 2
		} else {
			xSpc = ySpc * math.Sqrt(3) / 2
		}
	}

	xs := make([]float64, cols)
	for j := range xs {
		xs[j] = float64(j) * xSpc
	}
	floats.AddConst(-0.5*float64(cols-1)*xSpc, xs)

	ys := make([]float64, rows)
	for i := range ys {
		ys[i] = float64(i) * ySpc
	}
	floats.AddConst(-0.5*float64(rows-1)*ySpc, ys)

	n := rows * cols
	px := make([]float64, n)
	py := make([]float64, n)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			px[i*cols+j] = xs[j]
			py[i*cols+j] = ys[i]
		}
	}

	if tiling == HexTiling {
		if orientation == Horizontal {
			// Shift rows 0, 2, 4, ... right by half a step, then recenter.
			for i := 0; i < rows; i += 2 {
				for j := 0; j < cols; j++ {
					px[i*cols+j] += 0.5 * xSpc
				}
			}
			floats.AddConst(-0.25*xSpc, px)
		} else {
			// Shift columns 0, 2, 4, ... up by half a step, then recenter.
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j += 2 {
					py[i*cols+j] += 0.5 * ySpc
				}
			}
			floats.AddConst(-0.25*ySpc, py)
		}
	}

	return px, py
}

// gridNames expands a naming spec into rows*cols electrode names in
// row-major order.
func gridNames(spec NameSpec, rows, cols int) ([]string, error) {
	n := rows * cols
	if len(spec.List) > 0 {
		if len(spec.List) != n {
			return nil, fmt.Errorf("explicit names need %d entries, got %d: %w", n, len(spec.List), ErrBadNames)
		}
		return spec.List, nil
	}

	rowScheme, colScheme := spec.Row, spec.Col
	if rowScheme == "" && colScheme == "" {
		rowScheme, colScheme = "A", "1"
	}
	if n == 2 {
		// With exactly two cells the scheme pair itself supplies the names.
		return []string{rowScheme, colScheme}, nil
	}

	rowScheme, rowReverse := splitReverse(rowScheme)
	colScheme, colReverse := splitReverse(colScheme)

	rws, err := axisNames(rowScheme, rows, "row")
	if err != nil {
		return nil, err
	}
	clms, err := axisNames(colScheme, cols, "column")
	if err != nil {
		return nil, err
	}
	if rowReverse {
		reverseStrings(rws)
	}
	if colReverse {
		reverseStrings(clms)
	}

	names := make([]string, 0, n)
	if isAlpha(colScheme) && !isAlpha(rowScheme) {
		// Letters precede digits: ("1", "A") yields A1, B1, ... not 1A.
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				names = append(names, clms[j]+rws[i])
			}
		}
	} else {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				names = append(names, rws[i]+clms[j])
			}
		}
	}
	return names, nil
}

// splitReverse strips the reversal marker from a scheme string. Any "-" in
// the scheme triggers reversal.
func splitReverse(scheme string) (string, bool) {
	if strings.Contains(scheme, "-") {
		return strings.ReplaceAll(scheme, "-", ""), true
	}
	return scheme, false
}

// axisNames expands one scheme into n names for the given axis.
func axisNames(scheme string, n int, axis string) ([]string, error) {
	switch {
	case isAlpha(scheme):
		return AlphabeticNames(n), nil
	case isDigit(scheme):
		return NumericNames(n), nil
	default:
		return nil, fmt.Errorf("%s scheme %q must be alphabetic or numeric: %w", axis, scheme, ErrBadNames)
	}
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isDigit(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Shape returns the construction shape (rows, cols).
func (g *ElectrodeGrid) Shape() (rows, cols int) { return g.rows, g.cols }

// Tiling returns the grid tiling.
func (g *ElectrodeGrid) Tiling() Tiling { return g.tiling }

// Orientation returns the grid orientation.
func (g *ElectrodeGrid) Orientation() Orientation { return g.orientation }

// Spacing returns the construction spacing.
func (g *ElectrodeGrid) Spacing() Spacing { return g.spacing }

// Rotation returns the grid rotation in degrees.
func (g *ElectrodeGrid) Rotation() float64 { return g.rot }

// Array returns the grid's backing electrode array.
func (g *ElectrodeGrid) Array() *ElectrodeArray { return g.array }

// NElectrodes returns the number of electrodes in the grid.
func (g *ElectrodeGrid) NElectrodes() int { return g.array.NElectrodes() }

// Keys returns the electrode keys in insertion order.
func (g *ElectrodeGrid) Keys() []Key { return g.array.Keys() }

// Electrodes returns the electrode objects in insertion order.
func (g *ElectrodeGrid) Electrodes() []Electrode { return g.array.Electrodes() }

// AddElectrode appends an electrode to the backing array.
func (g *ElectrodeGrid) AddElectrode(key Key, e Electrode) error {
	return g.array.AddElectrode(key, e)
}

// RemoveElectrode deletes an electrode from the backing array.
func (g *ElectrodeGrid) RemoveElectrode(key Key) error {
	return g.array.RemoveElectrode(key)
}

// Get resolves a selector against the grid: key equality first, then flat
// position in insertion order, then (row, col) raveled row-major against
// the grid shape. A miss at every stage returns nil, including cells with
// either coordinate out of range.
func (g *ElectrodeGrid) Get(sel Selector) Electrode {
	if cell, ok := sel.(Cell); ok {
		if cell.Row < 0 || cell.Row >= g.rows || cell.Col < 0 || cell.Col >= g.cols {
			return nil
		}
		return g.array.at(cell.Row*g.cols + cell.Col)
	}
	return g.array.Get(sel)
}

// GetAll resolves each element of a batch against the grid, one result per
// element in order. The batch may mix names, flat indices, and cells.
func (g *ElectrodeGrid) GetAll(b Batch) []Electrode {
	out := make([]Electrode, len(b))
	for i, sel := range b {
		out[i] = g.Get(sel)
	}
	return out
}

// Activate turns on the electrodes addressed by sel, which may include cell
// selectors. Name("all") targets the whole grid.
func (g *ElectrodeGrid) Activate(sel Selector) error {
	return g.array.setActivatedVia(g.Get, sel, true)
}

// Deactivate turns off the electrodes addressed by sel, with the same
// addressing rules as Activate.
func (g *ElectrodeGrid) Deactivate(sel Selector) error {
	return g.array.setActivatedVia(g.Get, sel, false)
}

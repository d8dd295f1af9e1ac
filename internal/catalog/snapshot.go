package catalog

import (
	"fmt"

	"github.com/openphosphene/prosthesim/internal/implant"
)

// RecordFromParams builds a layout record from grid parameters. The record
// captures everything NewElectrodeGrid needs except per-electrode z and r
// overrides, which live in the electrode rows; rebuild such layouts with
// BuildWith so the rows are consulted.
func RecordFromParams(name string, p implant.GridParams) *LayoutRecord {
	rec := &LayoutRecord{
		Name:        name,
		Rows:        p.Rows,
		Cols:        p.Cols,
		SpacingX:    p.Spacing.X,
		SpacingY:    p.Spacing.Y,
		Uniform:     p.Spacing.Uniform,
		Tiling:      string(p.Tiling),
		Orientation: string(p.Orientation),
		RotationDeg: p.Rot,
		X:           p.X,
		Y:           p.Y,
		Z:           p.Z,
		Kind:        p.Kind,
		NameRows:    p.Names.Row,
		NameCols:    p.Names.Col,
	}
	if rec.Tiling == "" {
		rec.Tiling = string(implant.RectTiling)
	}
	if rec.Orientation == "" {
		rec.Orientation = string(implant.Horizontal)
	}
	if rec.Kind == "" {
		rec.Kind = implant.KindPoint
	}
	if p.R > 0 {
		r := p.R
		rec.R = &r
	}
	if a, ok := p.Extra["a"]; ok && a > 0 {
		side := a
		rec.Side = &side
	}
	return rec
}

// Params reconstructs the grid parameters stored in the record.
func (rec *LayoutRecord) Params() implant.GridParams {
	p := implant.GridParams{
		Rows:        rec.Rows,
		Cols:        rec.Cols,
		X:           rec.X,
		Y:           rec.Y,
		Z:           rec.Z,
		Rot:         rec.RotationDeg,
		Names:       implant.NameSpec{Row: rec.NameRows, Col: rec.NameCols},
		Tiling:      implant.Tiling(rec.Tiling),
		Orientation: implant.Orientation(rec.Orientation),
		Kind:        rec.Kind,
	}
	if rec.Uniform {
		p.Spacing = implant.UniformSpacing(rec.SpacingX)
	} else {
		p.Spacing = implant.AxisSpacing(rec.SpacingX, rec.SpacingY)
	}
	if rec.R != nil {
		p.R = *rec.R
	}
	if rec.Side != nil {
		p.Extra = implant.Params{"a": *rec.Side}
	}
	return p
}

// ParamsWith reconstructs grid parameters, recovering the per-electrode z
// and r overrides that the record's scalar columns cannot carry from the
// stored electrode rows. Rows must cover the grid in flat-index order, as
// ListElectrodes returns them; otherwise the scalar parameters stand.
// Uniform stored values collapse back to scalars.
func (rec *LayoutRecord) ParamsWith(electrodes []ElectrodeRecord) implant.GridParams {
	p := rec.Params()
	if len(electrodes) == 0 || len(electrodes) != rec.Rows*rec.Cols {
		return p
	}

	zs := make([]float64, len(electrodes))
	for i, e := range electrodes {
		zs[i] = e.Z
	}
	if allEqual(zs) {
		p.Z = zs[0]
		p.ZList = nil
	} else {
		p.ZList = zs
	}

	kind, ok := implant.GetKind(rec.Kind)
	if !ok || !kind.RequiresRadius {
		return p
	}
	rs := make([]float64, len(electrodes))
	for i, e := range electrodes {
		if e.R == nil {
			return p
		}
		rs[i] = *e.R
	}
	if allEqual(rs) {
		p.R = rs[0]
		p.RList = nil
	} else {
		p.RList = rs
	}
	return p
}

func allEqual(vs []float64) bool {
	for _, v := range vs[1:] {
		if v != vs[0] {
			return false
		}
	}
	return true
}

// Build materializes the stored grid from its scalar parameters alone.
// Layouts saved with per-electrode overrides cannot rebuild this way; use
// BuildWith, which recovers them from the electrode rows.
func (rec *LayoutRecord) Build() (*implant.ElectrodeGrid, error) {
	g, err := implant.NewElectrodeGrid(rec.Params())
	if err != nil {
		return nil, fmt.Errorf("build layout %q: %w", rec.Name, err)
	}
	return g, nil
}

// BuildWith materializes the stored grid from the record and its electrode
// rows, restoring per-electrode overrides and activation flags. It is the
// load-side counterpart of SnapshotElectrodes.
func (rec *LayoutRecord) BuildWith(electrodes []ElectrodeRecord) (*implant.ElectrodeGrid, error) {
	g, err := implant.NewElectrodeGrid(rec.ParamsWith(electrodes))
	if err != nil {
		return nil, fmt.Errorf("build layout %q: %w", rec.Name, err)
	}
	ApplyElectrodeStates(g, electrodes)
	return g, nil
}

// SnapshotElectrodes captures the grid's electrodes as storable rows in
// flat-index order.
func SnapshotElectrodes(g *implant.ElectrodeGrid) []ElectrodeRecord {
	electrodes := g.Electrodes()
	recs := make([]ElectrodeRecord, 0, len(electrodes))
	for i, e := range electrodes {
		kind, r := electrodeKind(e)
		recs = append(recs, ElectrodeRecord{
			Idx:       i,
			Name:      e.Name(),
			X:         e.X(),
			Y:         e.Y(),
			Z:         e.Z(),
			Kind:      kind,
			R:         r,
			Activated: e.Activated(),
		})
	}
	return recs
}

// ApplyElectrodeStates restores stored activation flags onto a rebuilt
// grid. Rows naming electrodes the grid no longer has are skipped.
func ApplyElectrodeStates(g *implant.ElectrodeGrid, electrodes []ElectrodeRecord) {
	for _, rec := range electrodes {
		e := g.Get(implant.Name(rec.Name))
		if e == nil {
			continue
		}
		e.SetActivated(rec.Activated)
	}
}

// electrodeKind maps a concrete electrode back to its registry kind and
// size parameter.
func electrodeKind(e implant.Electrode) (string, *float64) {
	switch v := e.(type) {
	case *implant.DiskElectrode:
		r := v.Radius()
		return implant.KindDisk, &r
	case *implant.SquareElectrode:
		a := v.Side()
		return implant.KindSquare, &a
	default:
		return implant.KindPoint, nil
	}
}

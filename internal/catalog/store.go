package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// LayoutRecord is a stored electrode grid layout: the parameters the grid
// was built from plus bookkeeping fields.
type LayoutRecord struct {
	LayoutID    string   `json:"layout_id"`
	Name        string   `json:"name"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	SpacingX    float64  `json:"spacing_x"`
	SpacingY    float64  `json:"spacing_y"`
	Uniform     bool     `json:"uniform"`
	Tiling      string   `json:"tiling"`
	Orientation string   `json:"orientation"`
	RotationDeg float64  `json:"rotation_deg"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Z           float64  `json:"z"`
	Kind        string   `json:"kind"`
	R           *float64 `json:"r,omitempty"`
	Side        *float64 `json:"side,omitempty"`
	NameRows    string   `json:"name_rows,omitempty"`
	NameCols    string   `json:"name_cols,omitempty"`
	Description string   `json:"description,omitempty"`
	CreatedAtNs int64    `json:"created_at_ns"`
	UpdatedAtNs *int64   `json:"updated_at_ns,omitempty"`
}

// ElectrodeRecord is one materialized electrode of a stored layout. R holds
// the kind's size parameter: disk radius or square side.
type ElectrodeRecord struct {
	Idx       int      `json:"idx"`
	Name      string   `json:"name"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Z         float64  `json:"z"`
	Kind      string   `json:"kind"`
	R         *float64 `json:"r,omitempty"`
	Activated bool     `json:"activated"`
}

// InsertLayout creates a new layout together with its electrode rows in one
// transaction. If rec.LayoutID is empty, a new UUID is generated.
func (c *Catalog) InsertLayout(rec *LayoutRecord, electrodes []ElectrodeRecord) error {
	if rec.LayoutID == "" {
		rec.LayoutID = uuid.New().String()
	}
	if rec.CreatedAtNs == 0 {
		rec.CreatedAtNs = c.clock.Now().UnixNano()
	}

	tx, err := c.Begin()
	if err != nil {
		return fmt.Errorf("begin insert layout: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO layouts (
			layout_id, name, rows, cols, spacing_x, spacing_y, uniform,
			tiling, orientation, rotation_deg, x, y, z, kind, r, side,
			name_rows, name_cols, description, created_at_ns, updated_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		rec.LayoutID,
		rec.Name,
		rec.Rows,
		rec.Cols,
		rec.SpacingX,
		rec.SpacingY,
		rec.Uniform,
		rec.Tiling,
		rec.Orientation,
		rec.RotationDeg,
		rec.X,
		rec.Y,
		rec.Z,
		rec.Kind,
		nullFloat64(rec.R),
		nullFloat64(rec.Side),
		nullString(rec.NameRows),
		nullString(rec.NameCols),
		nullString(rec.Description),
		rec.CreatedAtNs,
		nullInt64(rec.UpdatedAtNs),
	)
	if err != nil {
		return fmt.Errorf("insert layout: %w", err)
	}

	for _, e := range electrodes {
		_, err = tx.Exec(`
			INSERT INTO layout_electrodes (layout_id, idx, name, x, y, z, kind, r, activated)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.LayoutID, e.Idx, e.Name, e.X, e.Y, e.Z, e.Kind, nullFloat64(e.R), e.Activated,
		)
		if err != nil {
			return fmt.Errorf("insert electrode %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert layout: %w", err)
	}

	return nil
}

const layoutColumns = `
	layout_id, name, rows, cols, spacing_x, spacing_y, uniform,
	tiling, orientation, rotation_deg, x, y, z, kind, r, side,
	name_rows, name_cols, description, created_at_ns, updated_at_ns
`

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLayout(row rowScanner) (*LayoutRecord, error) {
	var rec LayoutRecord
	var r, side sql.NullFloat64
	var nameRows, nameCols, description sql.NullString
	var updatedAtNs sql.NullInt64

	err := row.Scan(
		&rec.LayoutID,
		&rec.Name,
		&rec.Rows,
		&rec.Cols,
		&rec.SpacingX,
		&rec.SpacingY,
		&rec.Uniform,
		&rec.Tiling,
		&rec.Orientation,
		&rec.RotationDeg,
		&rec.X,
		&rec.Y,
		&rec.Z,
		&rec.Kind,
		&r,
		&side,
		&nameRows,
		&nameCols,
		&description,
		&rec.CreatedAtNs,
		&updatedAtNs,
	)
	if err != nil {
		return nil, err
	}

	// Map nullable fields
	if r.Valid {
		v := r.Float64
		rec.R = &v
	}
	if side.Valid {
		v := side.Float64
		rec.Side = &v
	}
	if nameRows.Valid {
		rec.NameRows = nameRows.String
	}
	if nameCols.Valid {
		rec.NameCols = nameCols.String
	}
	if description.Valid {
		rec.Description = description.String
	}
	if updatedAtNs.Valid {
		v := updatedAtNs.Int64
		rec.UpdatedAtNs = &v
	}

	return &rec, nil
}

// GetLayout retrieves a layout by ID.
func (c *Catalog) GetLayout(layoutID string) (*LayoutRecord, error) {
	row := c.QueryRow(`SELECT `+layoutColumns+` FROM layouts WHERE layout_id = ?`, layoutID)
	rec, err := scanLayout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("layout %s: %w", layoutID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	return rec, nil
}

// GetLayoutByName retrieves a layout by its unique name.
func (c *Catalog) GetLayoutByName(name string) (*LayoutRecord, error) {
	row := c.QueryRow(`SELECT `+layoutColumns+` FROM layouts WHERE name = ?`, name)
	rec, err := scanLayout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("layout %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get layout by name: %w", err)
	}
	return rec, nil
}

// ListLayouts retrieves all layouts, newest first.
func (c *Catalog) ListLayouts() ([]*LayoutRecord, error) {
	rows, err := c.Query(`SELECT ` + layoutColumns + ` FROM layouts ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var recs []*LayoutRecord
	for rows.Next() {
		rec, err := scanLayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan layout row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list layouts rows: %w", err)
	}

	return recs, nil
}

// ListElectrodes retrieves the electrode rows of a layout in index order.
func (c *Catalog) ListElectrodes(layoutID string) ([]ElectrodeRecord, error) {
	rows, err := c.Query(`
		SELECT idx, name, x, y, z, kind, r, activated
		FROM layout_electrodes
		WHERE layout_id = ?
		ORDER BY idx
	`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("list electrodes: %w", err)
	}
	defer rows.Close()

	var recs []ElectrodeRecord
	for rows.Next() {
		var rec ElectrodeRecord
		var r sql.NullFloat64
		if err := rows.Scan(&rec.Idx, &rec.Name, &rec.X, &rec.Y, &rec.Z, &rec.Kind, &r, &rec.Activated); err != nil {
			return nil, fmt.Errorf("scan electrode row: %w", err)
		}
		if r.Valid {
			v := r.Float64
			rec.R = &v
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list electrodes rows: %w", err)
	}

	return recs, nil
}

// UpdateLayoutDescription updates a layout's description.
func (c *Catalog) UpdateLayoutDescription(layoutID, description string) error {
	updatedAtNs := c.clock.Now().UnixNano()
	result, err := c.Exec(`
		UPDATE layouts
		SET description = ?,
		    updated_at_ns = ?
		WHERE layout_id = ?
	`, nullString(description), updatedAtNs, layoutID)
	if err != nil {
		return fmt.Errorf("update layout: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("layout %s: %w", layoutID, ErrNotFound)
	}

	return nil
}

// SetElectrodeActivation flips the stored activation flag on one electrode.
func (c *Catalog) SetElectrodeActivation(layoutID, electrodeName string, activated bool) error {
	updatedAtNs := c.clock.Now().UnixNano()

	result, err := c.Exec(`
		UPDATE layout_electrodes
		SET activated = ?
		WHERE layout_id = ? AND name = ?
	`, activated, layoutID, electrodeName)
	if err != nil {
		return fmt.Errorf("set electrode activation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("electrode %s: %w", electrodeName, ErrNotFound)
	}

	_, err = c.Exec(`UPDATE layouts SET updated_at_ns = ? WHERE layout_id = ?`, updatedAtNs, layoutID)
	if err != nil {
		return fmt.Errorf("touch layout: %w", err)
	}

	return nil
}

// DeleteLayout deletes a layout by ID. Electrode rows cascade.
func (c *Catalog) DeleteLayout(layoutID string) error {
	result, err := c.Exec(`DELETE FROM layouts WHERE layout_id = ?`, layoutID)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("layout %s: %w", layoutID, ErrNotFound)
	}

	return nil
}

// Helper functions for nullable values

func nullFloat64(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt64(i *int64) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

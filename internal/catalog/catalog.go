// Package catalog persists electrode array layouts in SQLite. Each layout
// stores the grid parameters it was built from plus the materialized
// per-electrode rows, so saved arrays reproduce exactly even after
// post-construction edits like deactivation or electrode removal.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/openphosphene/prosthesim/internal/timeutil"
)

// ErrNotFound reports that no row matched the requested id or name.
var ErrNotFound = errors.New("catalog: not found")

// Catalog wraps the layouts database.
type Catalog struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

// Open opens (or creates) the catalog database at path and applies the
// connection pragmas. Call MigrateUp before using the store methods on a
// fresh database.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &Catalog{DB: db, path: path, clock: timeutil.RealClock{}}, nil
}

// Path returns the filesystem path the catalog was opened with.
func (c *Catalog) Path() string { return c.path }

package artifact

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/units"
)

// writeGeoPackage emits the geospatial format. A GeoPackage is a
// SQLite database; geometry is joined on by an external geospatial
// step, so the core writes an attributes table plus a column-metadata
// side-table and the gpkg_contents registration row.
func writeGeoPackage(a *Artifact, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open geopackage: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin geopackage transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createGpkgScaffolding(tx); err != nil {
		return err
	}

	name := a.Name
	if name == "" {
		name = "data"
	}
	if err := createDataTable(tx, name, a); err != nil {
		return err
	}
	if err := createMetadataSideTable(tx, name, a); err != nil {
		return err
	}

	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	_, err = tx.Exec(
		`INSERT OR REPLACE INTO gpkg_contents (table_name, data_type, identifier, description, last_change, srs_id) VALUES (?, 'attributes', ?, ?, ?, 0)`,
		name, name, "reportcore artifact", now)
	if err != nil {
		return fmt.Errorf("failed to register geopackage contents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit geopackage: %w", err)
	}
	return nil
}

// createGpkgScaffolding creates the mandatory GeoPackage system
// tables and the undefined spatial reference entries attribute tables
// need.
func createGpkgScaffolding(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL,
			srs_id INTEGER PRIMARY KEY,
			organization TEXT NOT NULL,
			organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL,
			description TEXT
		)`,
		`INSERT OR IGNORE INTO gpkg_spatial_ref_sys VALUES
			('Undefined Cartesian SRS', -1, 'NONE', -1, 'undefined', 'undefined cartesian coordinate reference system'),
			('Undefined Geographic SRS', 0, 'NONE', 0, 'undefined', 'undefined geographic coordinate reference system')`,
		`CREATE TABLE IF NOT EXISTS gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER,
			CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
		)`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("failed to create geopackage scaffolding: %w", err)
		}
	}
	return nil
}

// createDataTable creates and fills the attribute table itself.
func createDataTable(tx *sql.Tx, name string, a *Artifact) error {
	cols := make([]string, 0, len(a.Fields)+1)
	cols = append(cols, `"huc" TEXT NOT NULL`)
	for _, fm := range a.Fields {
		cols = append(cols, fmt.Sprintf("%q %s", fm.Name, sqliteType(fm.Dtype)))
	}
	create := fmt.Sprintf("CREATE TABLE %q (fid INTEGER PRIMARY KEY AUTOINCREMENT, %s)", name, strings.Join(cols, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create geopackage table %q: %w", name, err)
	}

	names := make([]string, 0, len(a.Fields)+1)
	marks := make([]string, 0, len(a.Fields)+1)
	names = append(names, `"huc"`)
	marks = append(marks, "?")
	for _, fm := range a.Fields {
		names = append(names, fmt.Sprintf("%q", fm.Name))
		marks = append(marks, "?")
	}
	insert := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", name, strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("failed to prepare geopackage insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range a.Table.Rows {
		args := make([]interface{}, 0, len(a.Fields)+1)
		args = append(args, row.Code)
		for _, fm := range a.Fields {
			args = append(args, row.Get(fm.Name).Interface())
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert geopackage row %s: %w", row.Code, err)
		}
	}
	return nil
}

// createMetadataSideTable writes the column metadata alongside the
// data so a consumer of the layer can recover friendly names, themes,
// units, and descriptions without the catalog.
func createMetadataSideTable(tx *sql.Tx, name string, a *Artifact) error {
	side := name + "_column_metadata"
	create := fmt.Sprintf(`CREATE TABLE %q (
		name TEXT NOT NULL PRIMARY KEY,
		friendly_name TEXT,
		theme TEXT,
		data_unit TEXT,
		dtype TEXT,
		description TEXT
	)`, side)
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create metadata side-table: %w", err)
	}
	insert := fmt.Sprintf("INSERT INTO %q (name, friendly_name, theme, data_unit, dtype, description) VALUES (?, ?, ?, ?, ?, ?)", side)
	for _, fm := range a.Fields {
		unit, err := units.ForSystem(fm.DataUnit, a.System)
		if err != nil {
			unit = fm.DataUnit
		}
		if _, err := tx.Exec(insert, fm.Name, fm.Friendly(), fm.Theme, unit, fm.Dtype.String(), fm.Description); err != nil {
			return fmt.Errorf("failed to insert metadata for column %q: %w", fm.Name, err)
		}
	}
	return nil
}

func sqliteType(d catalog.Dtype) string {
	switch d {
	case catalog.DtypeInteger:
		return "INTEGER"
	case catalog.DtypeReal:
		return "REAL"
	case catalog.DtypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

package artifact

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/riverscapes/reportcore/internal/units"
)

func buildTestArtifact(t *testing.T) *Artifact {
	t.Helper()
	a, err := Build("summary", validTable(), testRegistry(t), units.Imperial)
	require.NoError(t, err)
	return a
}

func TestWriteCSV(t *testing.T) {
	a := buildTestArtifact(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSVTo(a, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, append([]string{"HUC"}, a.Headers...), records[0])
	assert.Equal(t, "17040101", records[1][0])
	assert.Equal(t, "Watershed 17040101", records[1][1])
}

func TestWriteSpreadsheet(t *testing.T) {
	a := buildTestArtifact(t)
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, Emit(a, FormatSpreadsheet, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("summary")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, append([]string{"HUC"}, a.Headers...), rows[0])
	require.Len(t, rows, 3)
	assert.Equal(t, "17040102", rows[2][0])

	comments, err := f.GetComments("summary")
	require.NoError(t, err)
	assert.NotEmpty(t, comments, "header cells carry metadata comments")
}

func TestWriteGeoPackage(t *testing.T) {
	a := buildTestArtifact(t)
	path := filepath.Join(t.TempDir(), "summary.gpkg")
	require.NoError(t, Emit(a, FormatGeoPackage, path))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM summary`).Scan(&count))
	assert.Equal(t, 2, count)

	var dataType string
	require.NoError(t, db.QueryRow(
		`SELECT data_type FROM gpkg_contents WHERE table_name = 'summary'`).Scan(&dataType))
	assert.Equal(t, "attributes", dataType)

	// One side-table row per column, with the run-system unit baked in.
	rows, err := db.Query(`SELECT name, data_unit FROM summary_column_metadata ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()
	got := map[string]string{}
	for rows.Next() {
		var name, unit string
		require.NoError(t, rows.Scan(&name, &unit))
		got[name] = unit
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]string{
		"hucname":          "",
		"stream_length_km": "mile",
		"project_id":       "",
	}, got)
}

// Cross-format consistency: every writer consumes the same artifact
// header slice, so the flat table and spreadsheet expose identical
// column order, names, and units.
func TestCrossFormatHeaderConsistency(t *testing.T) {
	a := buildTestArtifact(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSVTo(a, &buf))
	csvRecords, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	xlsxPath := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, Emit(a, FormatSpreadsheet, xlsxPath))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	xlsxRows, err := f.GetRows("summary")
	require.NoError(t, err)

	assert.Equal(t, csvRecords[0], xlsxRows[0])
}

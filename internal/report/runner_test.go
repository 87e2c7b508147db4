package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riverscapes/reportcore/internal/artifact"
	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/table"
	"github.com/riverscapes/reportcore/internal/units"
)

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	reg, err := catalog.Load(catalog.SliceSource{
		{LayerID: "rme", Name: "hucname", FriendlyName: "Watershed Name", Dtype: "TEXT",
			IsRequired: "true", Aggregation: "FIRST"},
		{LayerID: "rme", Name: "stream_length_km", FriendlyName: "Stream Length",
			DataUnit: "kilometer", Dtype: "REAL", Aggregation: "SUM"},
		{LayerID: "rme", Name: "dam_count", DataUnit: "count", Dtype: "INTEGER",
			Aggregation: "FIRST", DefaultValue: "0"},
	})
	require.NoError(t, err)
	return reg
}

func leafTable(t *testing.T, reg *catalog.Registry) *table.Table {
	t.Helper()
	tbl := table.New("rme", 12, "hucname", "stream_length_km", "dam_count")
	for _, code := range []string{"170401010101", "170401010102", "170401010103", "170401010104"} {
		row := table.Row{Code: code}
		row.Set("hucname", table.Text("Teton"))
		row.Set("stream_length_km", table.Real(10))
		row.Set("dam_count", table.Int(3))
		tbl.Append(row)
	}
	require.NoError(t, reg.Annotate(tbl, "rme"))
	return tbl
}

func TestRunnerEndToEnd(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	runner := NewRunner(reg, zap.NewNop())
	summary, err := runner.Run(context.Background(), Request{
		Name:        "summary",
		Table:       leafTable(t, reg),
		TargetLevel: 8,
		System:      units.Imperial,
		Formats:     []artifact.Format{artifact.FormatFlat},
		OutputDir:   dir,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.InputRows)
	assert.Equal(t, 1, summary.OutputRows)
	assert.Empty(t, summary.Exclusions)
	require.Len(t, summary.Artifacts, 1)

	data, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Stream Length (mile)")
	assert.Contains(t, content, "17040101")
	// 40 km rolled up, then in miles.
	assert.Contains(t, content, "24.85")
}

func TestRunnerNoRollupWhenLevelMatches(t *testing.T) {
	reg := testRegistry(t)
	runner := NewRunner(reg, nil)

	summary, err := runner.Run(context.Background(), Request{
		Name:        "summary",
		Table:       leafTable(t, reg),
		TargetLevel: 12,
		System:      units.SI,
		Formats:     []artifact.Format{artifact.FormatFlat},
		OutputDir:   t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.OutputRows)
}

func TestRunnerOrphanColumnIsFatal(t *testing.T) {
	reg := testRegistry(t)
	tbl := table.New("rme", 12, "orphan_col")
	tbl.Append(table.Row{Code: "170401010101"})

	runner := NewRunner(reg, nil)
	_, err := runner.Run(context.Background(), Request{
		Name:      "summary",
		Table:     tbl,
		System:    units.SI,
		Formats:   []artifact.Format{artifact.FormatFlat},
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
}

func TestRunnerFatalErrorProducesNoArtifact(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	tbl := leafTable(t, reg)
	tbl.Rows[0].Set("hucname", table.Null()) // required violation at emission

	runner := NewRunner(reg, nil)
	_, err := runner.Run(context.Background(), Request{
		Name:        "summary",
		Table:       tbl,
		TargetLevel: 12,
		System:      units.SI,
		Formats:     []artifact.Format{artifact.FormatFlat},
		OutputDir:   dir,
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed run must not leave partial artifacts")
}

func TestRunnerEmitFailureStrandsNoEarlierFormat(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()

	// The geopackage writer cannot quote this name, so the second
	// format fails after the first has already been written.
	runner := NewRunner(reg, nil)
	_, err := runner.Run(context.Background(), Request{
		Name:        `summary"`,
		Table:       leafTable(t, reg),
		TargetLevel: 12,
		System:      units.SI,
		Formats:     []artifact.Format{artifact.FormatFlat, artifact.FormatGeoPackage},
		OutputDir:   dir,
	})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed run must not leave the earlier format behind")
}

func TestLoadCSVTable(t *testing.T) {
	reg := testRegistry(t)
	extract := strings.Join([]string{
		"huc,hucname,stream_length_km,dam_count",
		"170401010101,Teton Headwaters,10.5,3",
		"170401010102,Teton Canyon,,",
	}, "\n")

	tbl, err := ReadCSVTable(strings.NewReader(extract), "rme", reg)
	require.NoError(t, err)

	assert.Equal(t, 12, tbl.Level)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, 10.5, tbl.Rows[0].Get("stream_length_km").Float())
	assert.Equal(t, int64(3), tbl.Rows[0].Get("dam_count").Int())
	assert.True(t, tbl.Rows[1].Get("stream_length_km").IsNull())
	assert.Equal(t, "kilometer", tbl.Units["stream_length_km"])
}

func TestLoadCSVTableRejectsUnknownColumn(t *testing.T) {
	reg := testRegistry(t)
	_, err := ReadCSVTable(strings.NewReader("huc,orphan_col\n170401010101,x\n"), "rme", reg)
	assert.Error(t, err)
}

func TestLoadCSVTableRejectsMixedLevels(t *testing.T) {
	reg := testRegistry(t)
	extract := "huc,hucname\n170401010101,A\n17040101,B\n"
	_, err := ReadCSVTable(strings.NewReader(extract), "rme", reg)
	assert.Error(t, err)
}

func TestLoadCSVTableRejectsBadValue(t *testing.T) {
	reg := testRegistry(t)
	extract := "huc,dam_count\n170401010101,several\n"
	_, err := ReadCSVTable(strings.NewReader(extract), "rme", reg)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "layer_definitions_latest", cfg.Catalog.Table)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "SI", cfg.Report.UnitSystem)
	assert.Equal(t, 8, cfg.Report.TargetLevel)
	assert.Equal(t, "segment_area", cfg.Report.WeightColumn)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yml := `catalog:
  source: postgres://warehouse/riverscapes
  authority: riverscapes
  authority_name: rme
  schema_version: "1.2.0"
output:
  dir: /tmp/reports
report:
  layer_id: rme
  unit_system: imperial
  target_level: 10
  weight_column: reach_area
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.yml"), []byte(yml), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://warehouse/riverscapes", cfg.Catalog.Source)
	assert.Equal(t, "riverscapes", cfg.Catalog.Authority)
	assert.Equal(t, "rme", cfg.Catalog.AuthorityName)
	assert.Equal(t, "1.2.0", cfg.Catalog.SchemaVersion)
	assert.Equal(t, "/tmp/reports", cfg.Output.Dir)
	assert.Equal(t, "rme", cfg.Report.LayerID)
	assert.Equal(t, "imperial", cfg.Report.UnitSystem)
	assert.Equal(t, 10, cfg.Report.TargetLevel)
	assert.Equal(t, "reach_area", cfg.Report.WeightColumn)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REPORTCORE_REPORT_UNIT_SYSTEM", "imperial")
	t.Setenv("REPORTCORE_OUTPUT_DIR", "elsewhere")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "imperial", cfg.Report.UnitSystem)
	assert.Equal(t, "elsewhere", cfg.Output.Dir)
}

func TestLoadRejectsBadUnitSystem(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REPORTCORE_REPORT_UNIT_SYSTEM", "furlongs")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit_system")
}

func TestLoadRejectsOddTargetLevel(t *testing.T) {
	dir := t.TempDir()
	yml := "report:\n  target_level: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.yml"), []byte(yml), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_level")
}

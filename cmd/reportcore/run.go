package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverscapes/reportcore/internal/artifact"
	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/cli/config"
	"github.com/riverscapes/reportcore/internal/cli/ui"
	"github.com/riverscapes/reportcore/internal/hydro"
	"github.com/riverscapes/reportcore/internal/report"
	"github.com/riverscapes/reportcore/internal/table"
	"github.com/riverscapes/reportcore/internal/units"
)

var (
	runDataPath string
	runHUCs     string
	runName     string
	runLayer    string
	runUnits    string
	runLevel    int
	runFormats  []string
	runOutDir   string
	runYes      bool
	runVerbose  bool
	runNoColor  bool
)

func init() {
	runCmd.Flags().StringVar(&runDataPath, "data", "", "Path to the AOI data extract (CSV, code column first)")
	runCmd.Flags().StringVar(&runHUCs, "hucs", "", "Comma-separated HUC codes restricting the AOI (e.g. 17040101,17040102)")
	runCmd.Flags().StringVar(&runName, "name", "report", "Artifact base name")
	runCmd.Flags().StringVar(&runLayer, "layer", "", "Catalog layer_id of the extract (overrides config)")
	runCmd.Flags().StringVar(&runUnits, "units", "", "Unit system: SI or imperial (overrides config)")
	runCmd.Flags().IntVar(&runLevel, "level", 0, "Target HUC level for rollup (overrides config)")
	runCmd.Flags().StringSliceVar(&runFormats, "format", []string{"csv"}, "Artifact formats: csv, xlsx, gpkg")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "Output directory (overrides config)")
	runCmd.Flags().BoolVar(&runYes, "yes", false, "Skip the overwrite confirmation prompt")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Verbose logging")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Disable colorized output")
	_ = runCmd.MarkFlagRequired("data")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the report pipeline on a data extract",
	Long: `Load the catalog, attach metadata to the data extract, convert
units, roll up to the target HUC level, and emit artifacts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		layerID := firstNonEmpty(runLayer, cfg.Report.LayerID)
		if layerID == "" {
			return fmt.Errorf("no layer specified: use --layer or set report.layer_id")
		}
		sys, err := units.ParseSystem(firstNonEmpty(runUnits, cfg.Report.UnitSystem))
		if err != nil {
			return err
		}
		level := runLevel
		if level == 0 {
			level = cfg.Report.TargetLevel
		}
		outDir := firstNonEmpty(runOutDir, cfg.Output.Dir)

		formats := make([]artifact.Format, 0, len(runFormats))
		for _, f := range runFormats {
			format, err := artifact.ParseFormat(f)
			if err != nil {
				return err
			}
			formats = append(formats, format)
		}

		if err := confirmOutputDir(outDir); err != nil {
			return err
		}

		logger, err := newLogger(runVerbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		reg, err := openRegistry(cfg)
		if err != nil {
			return err
		}

		tbl, err := report.LoadCSVTable(runDataPath, layerID, reg)
		if err != nil {
			return err
		}
		if runHUCs != "" {
			aoi, err := hydro.ParseList(runHUCs)
			if err != nil {
				return err
			}
			tbl, err = filterAOI(tbl, aoi)
			if err != nil {
				return err
			}
		}

		runner := report.NewRunner(reg, logger)
		summary, err := runner.Run(context.Background(), report.Request{
			Name:         runName,
			Table:        tbl,
			TargetLevel:  level,
			System:       sys,
			Formats:      formats,
			OutputDir:    outDir,
			WeightColumn: cfg.Report.WeightColumn,
		})
		if err != nil {
			return err
		}

		ui.PrintSummary(os.Stdout, summary, runNoColor)
		return nil
	},
}

// filterAOI keeps only rows nested under one of the selected codes.
func filterAOI(t *table.Table, aoi []string) (*table.Table, error) {
	level := len(aoi[0])
	if level > t.Level {
		return nil, fmt.Errorf("AOI level %d is finer than the extract level %d", level, t.Level)
	}
	selected := make(map[string]bool, len(aoi))
	for _, c := range aoi {
		selected[c] = true
	}
	out := t.Clone()
	out.Rows = out.Rows[:0]
	for _, row := range t.Rows {
		parent, err := hydro.ParentAt(row.Code, level)
		if err != nil {
			return nil, err
		}
		if selected[parent] {
			out.Append(row)
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("no rows in the extract fall inside the selected HUCs")
	}
	return out, nil
}

// openRegistry resolves the configured catalog source: a warehouse
// DSN, a sqlite snapshot, or a CSV export.
func openRegistry(cfg *config.Config) (*catalog.Registry, error) {
	src := cfg.Catalog.Source
	if src == "" {
		return nil, fmt.Errorf("no catalog source configured: set catalog.source in report.yml")
	}
	switch {
	case strings.HasPrefix(src, "postgres://"), strings.HasPrefix(src, "postgresql://"):
		db, err := sql.Open("postgres", src)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog database: %w", err)
		}
		defer db.Close()
		return catalog.Load(catalog.SQLSource{
			DB:            db,
			Table:         cfg.Catalog.Table,
			Authority:     cfg.Catalog.Authority,
			AuthorityName: cfg.Catalog.AuthorityName,
			SchemaVersion: cfg.Catalog.SchemaVersion,
		})
	case strings.HasPrefix(src, "sqlite://"):
		db, err := sql.Open("sqlite3", strings.TrimPrefix(src, "sqlite://"))
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog snapshot: %w", err)
		}
		defer db.Close()
		return catalog.Load(catalog.SQLSource{
			DB:            db,
			Table:         cfg.Catalog.Table,
			Authority:     cfg.Catalog.Authority,
			AuthorityName: cfg.Catalog.AuthorityName,
			SchemaVersion: cfg.Catalog.SchemaVersion,
		})
	default:
		return catalog.Load(catalog.CSVSource{Path: src})
	}
}

// confirmOutputDir creates the output directory, asking before
// writing into one that already has files in it.
func confirmOutputDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect output directory: %w", err)
	}
	if len(entries) == 0 || runYes {
		return nil
	}
	overwrite := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Output directory %s is not empty. Write anyway?", dir),
	}
	if err := survey.AskOne(prompt, &overwrite); err != nil {
		return err
	}
	if !overwrite {
		return fmt.Errorf("aborted: output directory not empty")
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

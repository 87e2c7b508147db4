package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reportcore",
		Short: "Metadata-driven tabular pipeline for watershed reports",
		Long: `reportcore attaches column metadata to watershed data extracts,
converts units, rolls values up the HUC hierarchy, and emits
schema-consistent artifacts (CSV, spreadsheet, GeoPackage).`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(hucsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riverscapes/reportcore/internal/cli/config"
	"github.com/riverscapes/reportcore/internal/cli/ui"
)

var (
	catalogLayer   string
	catalogNoColor bool
)

func init() {
	catalogCmd.Flags().StringVar(&catalogLayer, "layer", "", "Limit the listing to one layer_id")
	catalogCmd.Flags().BoolVar(&catalogNoColor, "no-color", false, "Disable colorized output")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load and list the column metadata catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		reg, err := openRegistry(cfg)
		if err != nil {
			return err
		}

		layers := reg.Layers()
		if catalogLayer != "" {
			layers = []string{catalogLayer}
		}

		tbl := ui.NewTable(os.Stdout,
			[]string{"LAYER", "COLUMN", "FRIENDLY NAME", "UNIT", "DTYPE", "RULE", "KEY", "REQ"},
			catalogNoColor)
		count := 0
		for _, layer := range layers {
			for _, fm := range reg.Fields(layer) {
				tbl.AddRow(fm.LayerID, fm.Name, fm.Friendly(), fm.DataUnit,
					fm.Dtype.String(), fm.Aggregation.String(),
					boolMark(fm.IsKey), boolMark(fm.IsRequired))
				count++
			}
		}
		tbl.Render()
		fmt.Printf("\n%d column(s)\n", count)
		return nil
	},
}

func boolMark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

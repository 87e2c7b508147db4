package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riverscapes/reportcore/internal/hydro"
)

var (
	hucsField    string
	hucsFieldLen int
)

func init() {
	hucsCmd.Flags().StringVar(&hucsField, "field", "huc10", "Code column name in the warehouse table")
	hucsCmd.Flags().IntVar(&hucsFieldLen, "field-len", 10, "Digit length of the code column")
}

var hucsCmd = &cobra.Command{
	Use:   "hucs <codes>",
	Short: "Render the SQL predicate for a HUC selection",
	Long: `Parse a comma-separated HUC list and print the WHERE predicate a
warehouse extract query should use to select those watersheds. Codes at
the column's own level produce a direct IN; coarser codes match by
prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codes, err := hydro.ParseList(args[0])
		if err != nil {
			return err
		}
		predicate, err := hydro.SQLFilter(codes, hucsField, hucsFieldLen)
		if err != nil {
			return err
		}
		fmt.Println(predicate)
		return nil
	},
}

package artifact

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// writeCSV emits the flat-table format: one header row of friendly
// headers, then one record per watershed row with the code first.
func writeCSV(a *Artifact, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create flat table: %w", err)
	}
	defer f.Close()
	if err := WriteCSVTo(a, f); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSVTo streams the flat table to any writer. Tests use this to
// check cross-format header consistency without touching the
// filesystem.
func WriteCSVTo(a *Artifact, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"HUC"}, a.Headers...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write flat table header: %w", err)
	}
	for _, row := range a.Table.Rows {
		record := make([]string, 0, len(a.Fields)+1)
		record = append(record, row.Code)
		for _, fm := range a.Fields {
			record = append(record, row.Get(fm.Name).String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write flat table row %s: %w", row.Code, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

package artifact

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/riverscapes/reportcore/internal/units"
)

// writeSpreadsheet emits the spreadsheet format: one sheet named after
// the artifact, a bold header row, and a comment on each header cell
// carrying the column description and declared unit so the metadata
// travels inside the file.
func writeSpreadsheet(a *Artifact, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := a.Name
	if sheet == "" {
		sheet = "data"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", "HUC"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, header := range a.Headers {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", header, err)
		}
		if comment := headerComment(a, i); comment != "" {
			err := f.AddComment(sheet, excelize.Comment{
				Cell:      cell,
				Author:    "reportcore",
				Paragraph: []excelize.RichTextRun{{Text: comment}},
			})
			if err != nil {
				return fmt.Errorf("failed to attach comment to %q: %w", header, err)
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, cerr := excelize.CoordinatesToCellName(len(a.Headers)+1, 1)
		if cerr == nil {
			_ = f.SetCellStyle(sheet, "A1", last, bold)
		}
	}

	for r, row := range a.Table.Rows {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", r+2), row.Code); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.Code, err)
		}
		for c, fm := range a.Fields {
			cell, err := excelize.CoordinatesToCellName(c+2, r+2)
			if err != nil {
				return err
			}
			v := row.Get(fm.Name)
			if v.IsNull() {
				continue
			}
			if err := f.SetCellValue(sheet, cell, v.Interface()); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}

// headerComment builds the metadata comment for the i-th column: the
// catalog description plus the unit the values actually carry in this
// run's system.
func headerComment(a *Artifact, i int) string {
	fm := a.Fields[i]
	comment := fm.Description
	if unit, err := units.ForSystem(fm.DataUnit, a.System); err == nil && unit != "" {
		if comment != "" {
			comment += "\n"
		}
		comment += "Unit: " + unit
	}
	return comment
}

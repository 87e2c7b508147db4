package units

import (
	"fmt"

	"github.com/riverscapes/reportcore/internal/table"
)

// ConvertTable converts every dimensioned column of a table into the
// target system and returns a new table with updated unit tags. Text,
// boolean, and invariant columns pass through untouched. The input is
// not modified.
//
// Column units come from the table's own unit tags, so converting an
// already-converted table to the same system is a no-op and converting
// back recovers the original magnitudes within floating-point
// tolerance.
func ConvertTable(t *table.Table, to System) (*table.Table, error) {
	out := t.Clone()
	for _, col := range out.Columns {
		unit, ok := out.Units[col]
		if !ok || Invariant(unit) {
			continue
		}
		target, err := ForSystem(unit, to)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		if target == Normalize(unit) {
			out.Units[col] = target
			continue
		}
		for i := range out.Rows {
			v := out.Rows[i].Get(col)
			if v.IsNull() {
				continue
			}
			if !v.IsNumeric() {
				// A dimensioned unit on a non-numeric column is a
				// catalog defect caught by registry validation; here
				// we leave the cell alone.
				continue
			}
			conv, _, err := Convert(v.Float(), unit, to)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			out.Rows[i].Set(col, table.Real(conv))
		}
		out.Units[col] = target
	}
	return out, nil
}

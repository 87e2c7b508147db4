// Package artifact validates a finished table against its catalog
// contracts and emits schema-consistent outputs. Every writer consumes
// the same ordered column metadata and header list, so column order,
// names, and units are identical across output formats by
// construction.
package artifact

import (
	"fmt"
	"strings"

	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/table"
	"github.com/riverscapes/reportcore/internal/units"
)

// ValidationError carries every violation found while building an
// artifact, not just the first, so one failed run reports the whole
// diagnostic picture.
type ValidationError struct {
	Violations []catalog.Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "artifact validation failed"
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, "  - "+v.String())
	}
	if len(msgs) == 1 {
		return "artifact validation failed: " + strings.TrimPrefix(msgs[0], "  - ")
	}
	return fmt.Sprintf("artifact validation failed:\n%s", strings.Join(msgs, "\n"))
}

// Artifact is a validated output container: the finished table plus
// the embedded metadata subset every writer needs.
type Artifact struct {
	Name    string
	Table   *table.Table
	Fields  []catalog.FieldMetadata
	Headers []string
	System  units.System
}

// Build re-checks the final-table invariants (required columns
// non-null, key values unique, cell kinds matching declared dtypes)
// and assembles the artifact. It fails with a *ValidationError
// enumerating every violation found.
func Build(name string, t *table.Table, reg *catalog.Registry, sys units.System) (*Artifact, error) {
	var violations []catalog.Violation

	fields := make([]catalog.FieldMetadata, 0, len(t.Columns))
	headers := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		fm, err := reg.Lookup(t.LayerID, col)
		if err != nil {
			violations = append(violations, catalog.Violation{Column: col, Message: "column has no catalog entry"})
			continue
		}
		fields = append(fields, fm)
		headers = append(headers, fm.Header(sys))
	}

	violations = append(violations, reg.Validate(t, t.LayerID)...)
	violations = append(violations, checkKeyUniqueness(t, fields)...)

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return &Artifact{
		Name:    name,
		Table:   t,
		Fields:  fields,
		Headers: headers,
		System:  sys,
	}, nil
}

// checkKeyUniqueness verifies that no two rows at this (layer, level)
// share a value in an is_key column.
func checkKeyUniqueness(t *table.Table, fields []catalog.FieldMetadata) []catalog.Violation {
	var out []catalog.Violation
	for _, fm := range fields {
		if !fm.IsKey {
			continue
		}
		seen := make(map[string]string, len(t.Rows))
		for _, row := range t.Rows {
			v := row.Get(fm.Name)
			if v.IsNull() {
				continue
			}
			key := v.String()
			if prev, dup := seen[key]; dup {
				out = append(out, catalog.Violation{
					Column:  fm.Name,
					Row:     row.Code,
					Message: fmt.Sprintf("key value %q duplicates row %s", key, prev),
				})
				continue
			}
			seen[key] = row.Code
		}
	}
	return out
}

// Package aggregate rolls child-watershed rows up to coarser HUC
// levels. Every column is dispatched through its catalog-declared
// aggregation rule; a column without a usable rule is a fatal
// configuration error rather than a silent default, because silent
// defaults have produced incorrect rollups before.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/hydro"
	"github.com/riverscapes/reportcore/internal/table"
)

// AggregationConfigError reports a column that cannot be aggregated as
// configured.
type AggregationConfigError struct {
	Column string
	Detail string
}

func (e *AggregationConfigError) Error() string {
	return fmt.Sprintf("aggregation config error for column %q: %s", e.Column, e.Detail)
}

// Exclusion records a per-row anomaly encountered during rollup. The
// affected contribution is dropped from its aggregate and reported,
// never silently discarded.
type Exclusion struct {
	Code   string `json:"code"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

func (e Exclusion) String() string {
	return fmt.Sprintf("%s/%s: %s", e.Code, e.Column, e.Reason)
}

// Options tunes a rollup.
type Options struct {
	// WeightColumn names the area-like column used by
	// AREA_WEIGHTED_MEAN rules. Required when any column declares
	// that rule.
	WeightColumn string
}

// Aggregate rolls a leaf-level table up to the target HUC level.
//
// Children group by code prefix; each output row's code is the shared
// ancestor at the target level. NONE columns are omitted from the
// output, never zero-filled. A parent with no child rows simply does
// not appear. Children are processed in code order so results are
// independent of input ordering.
func Aggregate(t *table.Table, reg *catalog.Registry, targetLevel int, opts Options) (*table.Table, []Exclusion, error) {
	if !hydro.ValidLevel(targetLevel) {
		return nil, nil, fmt.Errorf("invalid target HUC level %d", targetLevel)
	}
	if targetLevel >= t.Level {
		return nil, nil, fmt.Errorf("target level %d is not coarser than input level %d", targetLevel, t.Level)
	}

	// Resolve each column's rule up front so configuration errors
	// abort before any arithmetic happens.
	type colPlan struct {
		name string
		fm   catalog.FieldMetadata
	}
	var plans []colPlan
	needWeight := false
	for _, col := range t.Columns {
		fm, err := reg.Lookup(t.LayerID, col)
		if err != nil {
			return nil, nil, err
		}
		switch fm.Aggregation {
		case catalog.AggUnset:
			return nil, nil, &AggregationConfigError{Column: col, Detail: "no aggregation rule declared in catalog"}
		case catalog.AggNone:
			continue // omitted at higher levels
		case catalog.AggAreaWeightedMean:
			needWeight = true
		}
		plans = append(plans, colPlan{name: col, fm: fm})
	}
	if needWeight {
		if opts.WeightColumn == "" {
			return nil, nil, &AggregationConfigError{
				Column: opts.WeightColumn,
				Detail: "AREA_WEIGHTED_MEAN columns present but no weight column configured",
			}
		}
		if !t.HasColumn(opts.WeightColumn) {
			return nil, nil, &AggregationConfigError{
				Column: opts.WeightColumn,
				Detail: "configured weight column is not in the input table",
			}
		}
	}

	// Group children under their target-level ancestor.
	groups := make(map[string][]table.Row)
	for _, row := range t.Rows {
		parent, err := hydro.ParentAt(row.Code, targetLevel)
		if err != nil {
			return nil, nil, err
		}
		groups[parent] = append(groups[parent], row)
	}
	parents := make([]string, 0, len(groups))
	for p := range groups {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	columns := make([]string, 0, len(plans))
	for _, p := range plans {
		columns = append(columns, p.name)
	}
	out := table.New(t.LayerID, targetLevel, columns...)
	for _, col := range columns {
		if u, ok := t.Units[col]; ok {
			out.Units[col] = u
		}
	}

	var exclusions []Exclusion
	for _, parent := range parents {
		children := groups[parent]
		sort.Slice(children, func(i, j int) bool { return children[i].Code < children[j].Code })

		row := table.Row{Code: parent}
		for _, plan := range plans {
			val, excl := rollup(plan.fm, children, plan.name, opts)
			exclusions = append(exclusions, excl...)
			row.Set(plan.name, val)
		}
		out.Append(row)
	}
	return out, exclusions, nil
}

// rollup computes one parent cell from the child rows per the column's
// declared rule.
func rollup(fm catalog.FieldMetadata, children []table.Row, col string, opts Options) (table.Value, []Exclusion) {
	switch fm.Aggregation {
	case catalog.AggSum:
		return sumRule(fm, children, col)
	case catalog.AggMean:
		return meanRule(children, col)
	case catalog.AggAreaWeightedMean:
		return weightedMeanRule(children, col, opts.WeightColumn)
	case catalog.AggFirst:
		return firstRule(children, col)
	default:
		return table.Null(), nil
	}
}

func sumRule(fm catalog.FieldMetadata, children []table.Row, col string) (table.Value, []Exclusion) {
	var sum float64
	var isum int64
	n := 0
	for _, c := range children {
		v := c.Get(col)
		if v.IsNull() {
			continue
		}
		sum += v.Float()
		isum += v.Int()
		n++
	}
	if n == 0 {
		return table.Null(), nil
	}
	if fm.Dtype == catalog.DtypeInteger {
		return table.Int(isum), nil
	}
	return table.Real(sum), nil
}

func meanRule(children []table.Row, col string) (table.Value, []Exclusion) {
	var sum float64
	n := 0
	for _, c := range children {
		v := c.Get(col)
		if v.IsNull() {
			continue
		}
		sum += v.Float()
		n++
	}
	if n == 0 {
		return table.Null(), nil
	}
	return table.Real(sum / float64(n)), nil
}

func weightedMeanRule(children []table.Row, col, weightCol string) (table.Value, []Exclusion) {
	var num, den float64
	var excl []Exclusion
	n := 0
	for _, c := range children {
		v := c.Get(col)
		if v.IsNull() {
			continue
		}
		w := c.Get(weightCol)
		if w.IsNull() || !w.IsNumeric() || w.Float() <= 0 {
			excl = append(excl, Exclusion{
				Code:   c.Code,
				Column: col,
				Reason: fmt.Sprintf("missing or non-positive weight %q", weightCol),
			})
			continue
		}
		num += v.Float() * w.Float()
		den += w.Float()
		n++
	}
	if n == 0 || den == 0 {
		return table.Null(), excl
	}
	return table.Real(num / den), excl
}

func firstRule(children []table.Row, col string) (table.Value, []Exclusion) {
	var first table.Value
	found := false
	var excl []Exclusion
	for _, c := range children {
		v := c.Get(col)
		if v.IsNull() {
			continue
		}
		if !found {
			first = v
			found = true
			continue
		}
		if !v.Equal(first) {
			// Children of a FIRST column are supposed to agree;
			// disagreement is an anomaly worth surfacing.
			excl = append(excl, Exclusion{
				Code:   c.Code,
				Column: col,
				Reason: fmt.Sprintf("FIRST-rule value %s disagrees with %s", v, first),
			})
		}
	}
	if !found {
		return table.Null(), excl
	}
	return first, excl
}

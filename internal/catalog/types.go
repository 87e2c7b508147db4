// Package catalog loads and serves the column metadata catalog that
// drives every report: friendly names, units, data types, key and
// required flags, defaults, and aggregation rules. The catalog is an
// externally maintained, loosely typed feed; this package is where it
// gets reconciled into a strict, immutable registry.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riverscapes/reportcore/internal/table"
	"github.com/riverscapes/reportcore/internal/units"
)

// Dtype is the declared storage type of a catalog column.
type Dtype int

const (
	DtypeUnknown Dtype = iota
	DtypeInteger
	DtypeReal
	DtypeText
	DtypeBoolean
)

// String returns the catalog-feed spelling of the dtype.
func (d Dtype) String() string {
	switch d {
	case DtypeInteger:
		return "INTEGER"
	case DtypeReal:
		return "REAL"
	case DtypeText:
		return "TEXT"
	case DtypeBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// ParseDtype maps the feed's loosely spelled type names onto the
// closed dtype set. The feed mixes SQL spellings freely.
func ParseDtype(s string) (Dtype, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
		return DtypeInteger, nil
	case "REAL", "FLOAT", "DOUBLE", "DECIMAL", "NUMERIC", "NUMBER":
		return DtypeReal, nil
	case "TEXT", "STRING", "VARCHAR", "CHAR", "UUID":
		return DtypeText, nil
	case "BOOLEAN", "BOOL":
		return DtypeBoolean, nil
	default:
		return DtypeUnknown, fmt.Errorf("unknown dtype %q", s)
	}
}

// Aggregation is the rollup rule for a column. The rule set is closed
// and every data column must declare one; there is no inferred
// default.
type Aggregation int

const (
	AggUnset Aggregation = iota
	AggSum
	AggMean
	AggAreaWeightedMean
	AggFirst
	AggNone
)

// String returns the catalog-feed spelling of the rule.
func (a Aggregation) String() string {
	switch a {
	case AggSum:
		return "SUM"
	case AggMean:
		return "MEAN"
	case AggAreaWeightedMean:
		return "AREA_WEIGHTED_MEAN"
	case AggFirst:
		return "FIRST"
	case AggNone:
		return "NONE"
	default:
		return "UNSET"
	}
}

// ParseAggregation parses a feed aggregation token. Empty is AggUnset,
// which the aggregator treats as a fatal configuration error.
func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return AggUnset, nil
	case "SUM":
		return AggSum, nil
	case "MEAN", "AVG":
		return AggMean, nil
	case "AREA_WEIGHTED_MEAN", "AWM":
		return AggAreaWeightedMean, nil
	case "FIRST":
		return AggFirst, nil
	case "NONE":
		return AggNone, nil
	default:
		return AggUnset, fmt.Errorf("unknown aggregation rule %q", s)
	}
}

// FieldMetadata is the immutable metadata contract for one column of
// one layer.
type FieldMetadata struct {
	LayerID      string
	LayerName    string
	LayerType    string
	LayerTheme   string
	Name         string
	FriendlyName string
	Theme        string
	DataUnit     string
	Dtype        Dtype
	Description  string
	IsKey        bool
	IsRequired   bool
	DefaultValue string
	Aggregation  Aggregation
}

// Friendly returns the friendly name, falling back to a title-cased
// version of the column name when the catalog leaves it blank.
func (f FieldMetadata) Friendly() string {
	if f.FriendlyName != "" {
		return f.FriendlyName
	}
	words := strings.Split(f.Name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Header renders the column header used by every artifact writer:
// the friendly name plus the unit for the run's system, e.g.
// "Stream Length (mile)". Headers are identical across formats
// because all writers call this one function.
func (f FieldMetadata) Header(sys units.System) string {
	name := f.Friendly()
	unit := units.Normalize(f.DataUnit)
	switch {
	case unit == "":
		return name
	case unit == "percent":
		return name + " (%)"
	case units.Invariant(unit):
		return name
	}
	target, err := units.ForSystem(unit, sys)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, target)
}

// ParseValue coerces a raw feed string into a typed cell per the
// column's declared dtype. Empty strings are null.
func (f FieldMetadata) ParseValue(raw string) (table.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return table.Null(), nil
	}
	switch f.Dtype {
	case DtypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return table.Null(), fmt.Errorf("column %q: %q is not an integer", f.Name, raw)
		}
		return table.Int(n), nil
	case DtypeReal:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return table.Null(), fmt.Errorf("column %q: %q is not a number", f.Name, raw)
		}
		return table.Real(v), nil
	case DtypeBoolean:
		return table.Bool(parseFeedBool(raw)), nil
	default:
		return table.Text(raw), nil
	}
}

// Default returns the typed default value, or null when none is
// declared.
func (f FieldMetadata) Default() (table.Value, error) {
	return f.ParseValue(f.DefaultValue)
}

// matches reports whether a cell's kind satisfies the declared dtype.
// Integer cells satisfy REAL columns; the reverse does not hold.
func (f FieldMetadata) matches(v table.Value) bool {
	if v.IsNull() {
		return true
	}
	switch f.Dtype {
	case DtypeInteger:
		return v.Kind() == table.KindInt
	case DtypeReal:
		return v.IsNumeric()
	case DtypeText:
		return v.Kind() == table.KindText
	case DtypeBoolean:
		return v.Kind() == table.KindBool
	default:
		return false
	}
}

// parseFeedBool accepts the feed's assorted truthy spellings. Anything
// unrecognized is false, matching how the upstream catalog has always
// been read.
func parseFeedBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}

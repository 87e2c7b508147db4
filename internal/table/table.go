// Package table provides the in-memory tabular model shared by the
// catalog, conversion, aggregation, and artifact layers. A Table is a
// bounded, ordered set of rows keyed by watershed code; it carries the
// current unit token for each column so conversions stay idempotent.
package table

import (
	"fmt"
	"sort"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindReal
	KindText
	KindBool
)

// Value is a typed scalar cell. The zero value is null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int wraps an integer cell value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Real wraps a floating-point cell value.
func Real(v float64) Value { return Value{kind: KindReal, f: v} }

// Text wraps a text cell value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Bool wraps a boolean cell value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the value's runtime kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value is an integer or real.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindReal }

// Int returns the integer magnitude. Real values are truncated.
func (v Value) Int() int64 {
	if v.kind == KindReal {
		return int64(v.f)
	}
	return v.i
}

// Float returns the numeric magnitude as a float64. Integers widen.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Text returns the text content of a KindText value.
func (v Value) Text() string { return v.s }

// Bool returns the boolean content of a KindBool value.
func (v Value) Bool() bool { return v.b }

// Interface returns the native Go representation, or nil for null.
// Writers use this to hand cells to database and spreadsheet APIs.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// String renders the value for display and flat-table output.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindReal:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return v.s
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindReal:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// Row is a single record keyed by its watershed code. Cells are indexed
// by catalog column name.
type Row struct {
	Code  string
	Cells map[string]Value
}

// Get returns the named cell. Missing columns read as null.
func (r Row) Get(col string) Value {
	if r.Cells == nil {
		return Null()
	}
	return r.Cells[col]
}

// Set assigns the named cell, allocating the cell map on first use.
func (r *Row) Set(col string, v Value) {
	if r.Cells == nil {
		r.Cells = make(map[string]Value)
	}
	r.Cells[col] = v
}

// Table is an ordered collection of rows for one layer at one watershed
// level. Units maps each column to its current unit token; conversion
// rewrites these tags so a second pass is a no-op.
type Table struct {
	LayerID string
	Level   int
	Columns []string
	Units   map[string]string
	Rows    []Row
}

// New creates an empty table for a layer with the given column order.
func New(layerID string, level int, columns ...string) *Table {
	return &Table{
		LayerID: layerID,
		Level:   level,
		Columns: append([]string(nil), columns...),
		Units:   make(map[string]string),
	}
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy. Conversion and aggregation operate on
// copies so callers keep their input tables untouched.
func (t *Table) Clone() *Table {
	out := New(t.LayerID, t.Level, t.Columns...)
	for k, v := range t.Units {
		out.Units[k] = v
	}
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := Row{Code: r.Code, Cells: make(map[string]Value, len(r.Cells))}
		for k, v := range r.Cells {
			nr.Cells[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// SortByCode orders rows by watershed code so downstream output is
// deterministic regardless of fetch order.
func (t *Table) SortByCode() {
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Code < t.Rows[j].Code })
}

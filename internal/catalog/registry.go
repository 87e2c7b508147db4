package catalog

import (
	"fmt"
	"sort"

	"github.com/riverscapes/reportcore/internal/table"
	"github.com/riverscapes/reportcore/internal/units"
)

// Registry is the immutable, loaded catalog. It is built once by Load
// and never mutated afterward, so concurrent lookups from multiple
// runs sharing a process need no locking. Substitute catalogs are
// injected in tests through the Source interface.
type Registry struct {
	fields map[string]map[string]FieldMetadata
	order  map[string][]string
}

// Load reads every record from the source, cleans and types it, and
// builds the registry.
//
// Exact duplicate (layer, column) entries are collapsed; duplicates
// whose dtype or unit disagree are a SchemaError. Every declared unit
// must be in the conversion vocabulary or loading fails, because a
// unit that cannot be converted would corrupt every artifact
// downstream.
func Load(src Source) (*Registry, error) {
	records, err := src.Records()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog feed returned no records")
	}

	r := &Registry{
		fields: make(map[string]map[string]FieldMetadata),
		order:  make(map[string][]string),
	}
	for _, rec := range records {
		fm, err := fieldFromRecord(rec)
		if err != nil {
			return nil, err
		}
		layer := r.fields[fm.LayerID]
		if layer == nil {
			layer = make(map[string]FieldMetadata)
			r.fields[fm.LayerID] = layer
		}
		if existing, ok := layer[fm.Name]; ok {
			if existing.Dtype != fm.Dtype || units.Normalize(existing.DataUnit) != units.Normalize(fm.DataUnit) {
				return nil, &SchemaError{
					LayerID: fm.LayerID,
					Column:  fm.Name,
					Detail: fmt.Sprintf("duplicate entries disagree: %s/%q vs %s/%q",
						existing.Dtype, existing.DataUnit, fm.Dtype, fm.DataUnit),
				}
			}
			continue
		}
		layer[fm.Name] = fm
		r.order[fm.LayerID] = append(r.order[fm.LayerID], fm.Name)
	}
	return r, nil
}

func fieldFromRecord(rec Record) (FieldMetadata, error) {
	if rec.LayerID == "" || rec.Name == "" {
		return FieldMetadata{}, &SchemaError{
			LayerID: rec.LayerID,
			Column:  rec.Name,
			Detail:  "record is missing layer_id or name",
		}
	}
	dtype, err := ParseDtype(rec.Dtype)
	if err != nil {
		return FieldMetadata{}, &SchemaError{LayerID: rec.LayerID, Column: rec.Name, Detail: err.Error()}
	}
	agg, err := ParseAggregation(rec.Aggregation)
	if err != nil {
		return FieldMetadata{}, &SchemaError{LayerID: rec.LayerID, Column: rec.Name, Detail: err.Error()}
	}
	unit := units.Normalize(rec.DataUnit)
	if !units.Known(unit) {
		return FieldMetadata{}, &units.UnsupportedUnitError{Unit: rec.DataUnit}
	}
	// Conversion rewrites magnitudes, so a dimensioned column must be
	// REAL; an integer cell could not survive a unit change intact.
	if unit != "" && !units.Invariant(unit) && dtype != DtypeReal {
		return FieldMetadata{}, &SchemaError{
			LayerID: rec.LayerID,
			Column:  rec.Name,
			Detail:  fmt.Sprintf("dimensioned unit %q requires dtype REAL, got %s", unit, dtype),
		}
	}
	fm := FieldMetadata{
		LayerID:      rec.LayerID,
		LayerName:    rec.LayerName,
		LayerType:    rec.LayerType,
		LayerTheme:   rec.LayerTheme,
		Name:         rec.Name,
		FriendlyName: rec.FriendlyName,
		Theme:        rec.Theme,
		DataUnit:     unit,
		Dtype:        dtype,
		Description:  rec.Description,
		IsKey:        parseFeedBool(rec.IsKey),
		IsRequired:   parseFeedBool(rec.IsRequired),
		DefaultValue: rec.DefaultValue,
		Aggregation:  agg,
	}
	if _, err := fm.Default(); err != nil {
		return FieldMetadata{}, &SchemaError{
			LayerID: rec.LayerID,
			Column:  rec.Name,
			Detail:  fmt.Sprintf("default value %q does not match dtype %s", rec.DefaultValue, dtype),
		}
	}
	return fm, nil
}

// Lookup returns the metadata for one column of one layer.
func (r *Registry) Lookup(layerID, column string) (FieldMetadata, error) {
	layer, ok := r.fields[layerID]
	if !ok {
		return FieldMetadata{}, &UnknownColumnError{LayerID: layerID, Column: column}
	}
	fm, ok := layer[column]
	if !ok {
		return FieldMetadata{}, &UnknownColumnError{LayerID: layerID, Column: column}
	}
	return fm, nil
}

// Fields returns a layer's metadata in catalog order.
func (r *Registry) Fields(layerID string) []FieldMetadata {
	names := r.order[layerID]
	out := make([]FieldMetadata, 0, len(names))
	for _, n := range names {
		out = append(out, r.fields[layerID][n])
	}
	return out
}

// Layers returns the sorted layer IDs present in the catalog.
func (r *Registry) Layers() []string {
	out := make([]string, 0, len(r.fields))
	for id := range r.fields {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Validate checks a table against the catalog and returns every
// detected problem: orphan columns, null required cells, and cells
// whose kind contradicts the declared dtype.
func (r *Registry) Validate(t *table.Table, layerID string) []Violation {
	var out []Violation
	known := make(map[string]FieldMetadata, len(t.Columns))
	for _, col := range t.Columns {
		fm, err := r.Lookup(layerID, col)
		if err != nil {
			out = append(out, Violation{Column: col, Message: "column has no catalog entry"})
			continue
		}
		known[col] = fm
	}
	for _, row := range t.Rows {
		for _, col := range t.Columns {
			fm, ok := known[col]
			if !ok {
				continue
			}
			v := row.Get(col)
			if v.IsNull() {
				if fm.IsRequired {
					out = append(out, Violation{Column: col, Row: row.Code, Message: "required column is null"})
				}
				continue
			}
			if !fm.matches(v) {
				out = append(out, Violation{
					Column:  col,
					Row:     row.Code,
					Message: fmt.Sprintf("value does not match declared dtype %s", fm.Dtype),
				})
			}
		}
	}
	return out
}

// Annotate stamps the table's unit tags from the catalog. Orphan
// columns are fatal: a column the catalog cannot resolve must never
// flow further down the pipeline.
func (r *Registry) Annotate(t *table.Table, layerID string) error {
	for _, col := range t.Columns {
		fm, err := r.Lookup(layerID, col)
		if err != nil {
			return err
		}
		t.Units[col] = units.Normalize(fm.DataUnit)
	}
	return nil
}

// ApplyDefaults fills declared default values into null cells of
// non-required columns, returning the count of cells filled. Required
// columns are left null so validation still reports them.
func (r *Registry) ApplyDefaults(t *table.Table, layerID string) (int, error) {
	filled := 0
	for _, col := range t.Columns {
		fm, err := r.Lookup(layerID, col)
		if err != nil {
			return filled, err
		}
		if fm.IsRequired || fm.DefaultValue == "" {
			continue
		}
		def, err := fm.Default()
		if err != nil {
			return filled, err
		}
		for i := range t.Rows {
			if t.Rows[i].Get(col).IsNull() {
				t.Rows[i].Set(col, def)
				filled++
			}
		}
	}
	return filled, nil
}

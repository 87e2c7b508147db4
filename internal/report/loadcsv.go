package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/hydro"
	"github.com/riverscapes/reportcore/internal/table"
)

// LoadCSVTable reads an externally fetched data extract into a typed
// table. The extract is one layer's rows, already filtered to the AOI
// upstream; the first column must be the watershed code and the
// remaining headers must resolve in the catalog, which supplies the
// dtype used to parse each cell. Empty cells are null.
func LoadCSVTable(path, layerID string, reg *catalog.Registry) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data extract: %w", err)
	}
	defer f.Close()
	return ReadCSVTable(f, layerID, reg)
}

// ReadCSVTable parses a data extract from any reader.
func ReadCSVTable(r io.Reader, layerID string, reg *catalog.Registry) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read data extract header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("data extract needs a code column and at least one data column")
	}

	columns := make([]string, 0, len(header)-1)
	fields := make([]catalog.FieldMetadata, 0, len(header)-1)
	for _, h := range header[1:] {
		name := strings.TrimSpace(h)
		fm, err := reg.Lookup(layerID, name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, name)
		fields = append(fields, fm)
	}

	var level int
	tbl := table.New(layerID, 0, columns...)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data extract: %w", err)
		}
		code, err := hydro.ParseCode(rec[0])
		if err != nil {
			return nil, err
		}
		if level == 0 {
			level = len(code)
		} else if len(code) != level {
			return nil, &hydro.MalformedWatershedCodeError{
				Code:   code,
				Reason: fmt.Sprintf("mixed levels in extract: expected %d digits", level),
			}
		}
		row := table.Row{Code: code}
		for i, fm := range fields {
			raw := ""
			if i+1 < len(rec) {
				raw = rec[i+1]
			}
			v, err := fm.ParseValue(raw)
			if err != nil {
				return nil, fmt.Errorf("row %s: %w", code, err)
			}
			row.Set(fm.Name, v)
		}
		tbl.Append(row)
	}
	if tbl.Len() == 0 {
		return nil, fmt.Errorf("data extract contains no rows")
	}
	tbl.Level = level
	if err := reg.Annotate(tbl, layerID); err != nil {
		return nil, err
	}
	return tbl, nil
}

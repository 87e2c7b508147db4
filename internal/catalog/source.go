package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one raw row of the catalog feed, as strings. Cleaning and
// typing happen in Load, not in the sources, so every source stays a
// dumb reader.
type Record struct {
	LayerID          string
	LayerName        string
	LayerType        string
	LayerPath        string
	LayerTheme       string
	LayerSourceURL   string
	LayerDataVersion string
	LayerDescription string
	Name             string
	FriendlyName     string
	Theme            string
	DataUnit         string
	Dtype            string
	Description      string
	IsKey            string
	IsRequired       string
	DefaultValue     string
	Aggregation      string
	CommitSHA        string
}

// Source supplies raw catalog records. Implementations exist for
// in-memory slices, CSV exports, and warehouse tables.
type Source interface {
	Records() ([]Record, error)
}

// SliceSource serves records from memory. Tests inject substitute
// catalogs through it.
type SliceSource []Record

// Records implements Source.
func (s SliceSource) Records() ([]Record, error) {
	return append([]Record(nil), s...), nil
}

// CSVSource reads a catalog feed exported to CSV. The header row names
// the feed columns; unknown header names are ignored so feed additions
// do not break older readers.
type CSVSource struct {
	Path string
}

// Records implements Source.
func (s CSVSource) Records() ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog feed: %w", err)
	}
	defer f.Close()
	return readCSVRecords(f)
}

func readCSVRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["layer_id"]; !ok {
		return nil, fmt.Errorf("catalog feed is missing the layer_id column")
	}
	if _, ok := idx["name"]; !ok {
		return nil, fmt.Errorf("catalog feed is missing the name column")
	}

	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog feed: %w", err)
		}
		records = append(records, Record{
			LayerID:          get(row, "layer_id"),
			LayerName:        get(row, "layer_name"),
			LayerType:        get(row, "layer_type"),
			LayerPath:        get(row, "layer_path"),
			LayerTheme:       get(row, "layer_theme"),
			LayerSourceURL:   get(row, "layer_source_url"),
			LayerDataVersion: get(row, "layer_data_product_version"),
			LayerDescription: get(row, "layer_description"),
			Name:             get(row, "name"),
			FriendlyName:     get(row, "friendly_name"),
			Theme:            get(row, "theme"),
			DataUnit:         get(row, "data_unit"),
			Dtype:            get(row, "dtype"),
			Description:      get(row, "description"),
			IsKey:            get(row, "is_key"),
			IsRequired:       get(row, "is_required"),
			DefaultValue:     get(row, "default_value"),
			Aggregation:      get(row, "aggregation"),
			CommitSHA:        get(row, "commit_sha"),
		})
	}
	return records, nil
}

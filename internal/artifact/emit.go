package artifact

import (
	"fmt"
	"strings"
)

// Format selects an output format for Emit.
type Format int

const (
	FormatFlat Format = iota
	FormatSpreadsheet
	FormatGeoPackage
)

// String returns the format's file extension.
func (f Format) String() string {
	switch f {
	case FormatSpreadsheet:
		return "xlsx"
	case FormatGeoPackage:
		return "gpkg"
	default:
		return "csv"
	}
}

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "flat":
		return FormatFlat, nil
	case "xlsx", "spreadsheet", "excel":
		return FormatSpreadsheet, nil
	case "gpkg", "geopackage":
		return FormatGeoPackage, nil
	default:
		return FormatFlat, fmt.Errorf("unknown artifact format %q (valid: csv, xlsx, gpkg)", s)
	}
}

// Emit writes the artifact to the given path in the given format. The
// writers never touch compression or upload; packaging is the calling
// report's problem.
func Emit(a *Artifact, format Format, path string) error {
	switch format {
	case FormatFlat:
		return writeCSV(a, path)
	case FormatSpreadsheet:
		return writeSpreadsheet(a, path)
	case FormatGeoPackage:
		return writeGeoPackage(a, path)
	default:
		return fmt.Errorf("unknown artifact format %d", format)
	}
}

package catalog

import "fmt"

// SchemaError reports a catalog feed defect: duplicate entries for the
// same (layer, column) whose dtype or unit disagree. A malformed
// catalog corrupts every downstream artifact, so this aborts loading.
type SchemaError struct {
	LayerID string
	Column  string
	Detail  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog schema error for %s.%s: %s", e.LayerID, e.Column, e.Detail)
}

// UnknownColumnError reports a lookup for a column the catalog does
// not define.
type UnknownColumnError struct {
	LayerID string
	Column  string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("no catalog entry for column %q in layer %q", e.Column, e.LayerID)
}

// Violation is one detected problem in a table checked against the
// catalog. Validation collects every violation rather than stopping at
// the first, so a single run surfaces the full diagnostic picture.
type Violation struct {
	Column  string `json:"column"`
	Row     string `json:"row,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Row != "" {
		return fmt.Sprintf("%s (row %s): %s", v.Column, v.Row, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Column, v.Message)
}

package catalog

import (
	"database/sql"
	"fmt"
)

// SQLSource reads the catalog feed from a warehouse table through
// database/sql. The feed is partitioned by authority, authority name,
// and tool schema version; the query pins all three so one registry
// never mixes catalog generations.
type SQLSource struct {
	DB            *sql.DB
	Table         string
	Authority     string
	AuthorityName string
	SchemaVersion string
}

const sqlFeedColumns = `layer_id, layer_name, layer_type, layer_path, layer_theme,
	layer_source_url, layer_data_product_version, layer_description,
	name, friendly_name, theme, data_unit, dtype, description,
	is_key, is_required, default_value, aggregation, commit_sha`

// Records implements Source.
func (s SQLSource) Records() ([]Record, error) {
	tbl := s.Table
	if tbl == "" {
		tbl = "layer_definitions_latest"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE authority = $1 AND authority_name = $2 AND tool_schema_version = $3 ORDER BY layer_id, name",
		sqlFeedColumns, tbl)

	rows, err := s.DB.Query(query, s.Authority, s.AuthorityName, s.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog feed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var fields = []*string{
			&r.LayerID, &r.LayerName, &r.LayerType, &r.LayerPath, &r.LayerTheme,
			&r.LayerSourceURL, &r.LayerDataVersion, &r.LayerDescription,
			&r.Name, &r.FriendlyName, &r.Theme, &r.DataUnit, &r.Dtype, &r.Description,
			&r.IsKey, &r.IsRequired, &r.DefaultValue, &r.Aggregation, &r.CommitSHA,
		}
		dest := make([]interface{}, len(fields))
		for i := range fields {
			dest[i] = &nullString{target: fields[i]}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan catalog record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog feed read failed: %w", err)
	}
	return records, nil
}

// nullString scans SQL NULLs as empty strings so the feed's sparse
// columns flow through the same cleaning path as CSV blanks.
type nullString struct {
	target *string
}

func (n *nullString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*n.target = ""
	case string:
		*n.target = v
	case []byte:
		*n.target = string(v)
	default:
		*n.target = fmt.Sprintf("%v", v)
	}
	return nil
}

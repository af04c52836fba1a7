package model

// Column describes one column of a query-store result table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"` // Kusto scalar type, e.g. "string", "long", "datetime"
}

// QueryResult is the first table of a primary result set. A nil *QueryResult
// means the store returned no primary result.
type QueryResult struct {
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

func (r *QueryResult) ColumnIndex(name string) int {
	if r == nil {
		return -1
	}
	for i, c := range r.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (r *QueryResult) HasColumns(names ...string) bool {
	for _, n := range names {
		if r.ColumnIndex(n) < 0 {
			return false
		}
	}
	return true
}

func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Records converts the table into one map per row, keyed by column name.
// The result is never nil so it always serializes as a JSON array.
func (r *QueryResult) Records() []map[string]interface{} {
	if r == nil {
		return []map[string]interface{}{}
	}
	records := make([]map[string]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]interface{}, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col.Name] = row[i]
			} else {
				rec[col.Name] = nil
			}
		}
		records = append(records, rec)
	}
	return records
}

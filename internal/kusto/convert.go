package kusto

import (
	"encoding/json"
	"strconv"

	"kql-assistant-backend/internal/model"
)

func convertRow(columns []model.Column, raw []string) []interface{} {
	out := make([]interface{}, len(raw))
	for i, s := range raw {
		colType := ""
		if i < len(columns) {
			colType = columns[i].Type
		}
		out[i] = convertValue(colType, s)
	}
	return out
}

// convertValue maps the textual form of a Kusto scalar to a JSON-friendly Go
// value. Empty text in a non-string column is a null.
func convertValue(colType, s string) interface{} {
	switch colType {
	case "string":
		return s
	case "bool", "boolean":
		if s == "" {
			return nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return s
		}
		return b
	case "int", "long":
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return s
		}
		return n
	case "real", "double":
		if s == "" || s == "NaN" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return s
		}
		return f
	case "dynamic":
		if s == "" {
			return nil
		}
		if json.Valid([]byte(s)) {
			return json.RawMessage(s)
		}
		return s
	default:
		// datetime, timespan, guid and decimal keep their textual form.
		if s == "" {
			return nil
		}
		return s
	}
}

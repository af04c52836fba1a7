package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"kql-assistant-backend/internal/model"

	"github.com/guptarohit/asciigraph"
	"github.com/pterm/pterm"
)

const (
	plotDateColumn  = "Date"
	plotValueColumn = "Value"
	plotHeight      = 12
	plotWidth       = 72
)

func tableData(res *model.QueryResult) pterm.TableData {
	header := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = c.Name
	}
	data := pterm.TableData{header}
	for _, row := range res.Rows {
		cells := make([]string, len(header))
		for i := range cells {
			if i < len(row) {
				cells[i] = formatCell(row[i])
			}
		}
		data = append(data, cells)
	}
	return data
}

func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.RawMessage:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func renderTable(res *model.QueryResult) (string, error) {
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData(res)).Srender()
}

type point struct {
	label string
	value float64
}

// valueSeries extracts the numeric Value column in row order, labelled by
// Date. Rows with a missing or non-numeric value are skipped.
func valueSeries(res *model.QueryResult) []point {
	if !res.HasColumns(plotDateColumn, plotValueColumn) {
		return nil
	}
	di, vi := res.ColumnIndex(plotDateColumn), res.ColumnIndex(plotValueColumn)

	var points []point
	for _, row := range res.Rows {
		if di >= len(row) || vi >= len(row) {
			continue
		}
		v, ok := toFloat(row[vi])
		if !ok {
			continue
		}
		points = append(points, point{label: formatCell(row[di]), value: v})
	}
	return points
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// renderPlot draws Value over Date. It reports false when the result has no
// plottable points.
func renderPlot(res *model.QueryResult) (string, bool) {
	points := valueSeries(res)
	if len(points) == 0 {
		return "", false
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.value
	}
	caption := fmt.Sprintf("%s over %s (%s .. %s)", plotValueColumn, plotDateColumn, points[0].label, points[len(points)-1].label)
	if len(points) == 1 {
		// asciigraph needs two samples to draw a line.
		values = append(values, values[0])
	}
	return asciigraph.Plot(values,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	), true
}

package render

import (
	"math"
	"strconv"

	"MacroDash/internal/calculator"
	"MacroDash/internal/model"
)

// PreviewRows is how many trailing rows the preview table shows.
const PreviewRows = 5

// Table is a formatted grid ready for a template.
type Table struct {
	Header []string
	Rows   [][]string
}

// PreviewTable formats the last PreviewRows rows.
func PreviewTable(rows []model.CombinedRow) Table {
	t := Table{Header: append([]string{"Date"}, model.Columns...)}
	for _, r := range calculator.Tail(rows, PreviewRows) {
		cells := []string{r.Time.Format("2006-01-02")}
		for _, v := range r.Values() {
			cells = append(cells, formatValue(v, 6))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// CorrelationTable formats a correlation matrix with a leading label column.
func CorrelationTable(m model.CorrelationMatrix) Table {
	t := Table{Header: append([]string{""}, m.Columns...)}
	for i, name := range m.Columns {
		cells := []string{name}
		for _, v := range m.Values[i] {
			cells = append(cells, formatValue(v, 4))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func formatValue(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Insights are the fixed analytical prompts shown under the correlation table.
var Insights = []string{
	"Is there a negative correlation between unemployment and the S&P 500?",
	"How do returns react to an interest rate hike?",
}

package render

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"MacroDash/internal/model"
)

// Chart titles and series labels.
const (
	ChartTitle      = "S&P 500 and Macroeconomic Variables"
	returnAxisName  = "S&P 500 Monthly Return"
	ratesAxisName   = "Rates and Inflation (%)"
	seriesReturn    = "S&P 500 Return"
	seriesUnemploy  = "Unemployment Rate"
	seriesInflation = "Inflation Rate"
	seriesInterest  = "Interest Rate"
)

// rateSeries are drawn dashed on the right-hand axis.
var rateSeries = []struct {
	name  string
	color string
	value func(model.CombinedRow) float64
}{
	{seriesUnemploy, "green", func(r model.CombinedRow) float64 { return r.Unemployment }},
	{seriesInflation, "red", func(r model.CombinedRow) float64 { return r.Inflation }},
	{seriesInterest, "purple", func(r model.CombinedRow) float64 { return r.FedFunds }},
}

// Chart builds the dual-axis line chart: monthly return on the left axis,
// the three rates on the right axis.
func Chart(rows []model.CombinedRow) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: ChartTitle,
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: ChartTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Left: "10%", Top: "8%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: returnAxisName, Type: "value"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: ratesAxisName, Type: "value"})

	dates := make([]string, len(rows))
	returns := make([]opts.LineData, len(rows))
	for i, r := range rows {
		dates[i] = r.Time.Format("2006-01")
		returns[i] = opts.LineData{Value: r.MonthlyReturn}
	}

	line.SetXAxis(dates).
		AddSeries(seriesReturn, returns,
			charts.WithLineStyleOpts(opts.LineStyle{Color: "blue"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "blue"}),
		)

	for _, s := range rateSeries {
		data := make([]opts.LineData, len(rows))
		for i, r := range rows {
			data[i] = opts.LineData{Value: s.value(r)}
		}
		line.AddSeries(s.name, data,
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.color, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.color}),
		)
	}
	return line
}

// WriteChart renders the chart as a standalone HTML page.
func WriteChart(w io.Writer, rows []model.CombinedRow) error {
	return Chart(rows).Render(w)
}

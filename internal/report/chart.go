package report

import (
	"errors"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"energymix/internal/engine"
	"energymix/internal/models"
)

var ErrNotChartable = errors.New("table has no year or country axis")

// Chart writes an HTML page with a line chart for year-indexed tables and a
// bar chart for country rankings. Absent values leave gaps in the line.
func Chart(w io.Writer, t models.Table) error {
	if t.Index(engine.ColYear) == 0 {
		return lineChart(t).Render(w)
	}
	if t.Index(engine.ColCountry) >= 0 {
		return barChart(t).Render(w)
	}
	return ErrNotChartable
}

func chartValue(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case models.NullFloat:
		if x.Valid {
			return x.Float64
		}
		return "-"
	}
	return "-"
}

func lineChart(t models.Table) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: t.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: Label(engine.ColYear)}),
	)

	catCol := t.Index(engine.ColCategory)
	if catCol >= 0 {
		// year, category, value: one series per category
		valCol := len(t.Columns) - 1
		years, index := yearAxis(t)
		line.SetXAxis(years)
		for _, cat := range models.Categories {
			data := make([]opts.LineData, len(years))
			for i := range data {
				data[i] = opts.LineData{Value: "-"}
			}
			for _, r := range t.Rows {
				if r[catCol] == cat.String() {
					data[index[r[0].(int)]] = opts.LineData{Value: chartValue(r[valCol])}
				}
			}
			line.AddSeries(cat.String(), data)
		}
		return line
	}

	labels := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		labels[i] = strconv.Itoa(r[0].(int))
	}
	line.SetXAxis(labels)
	for j := 1; j < len(t.Columns); j++ {
		data := make([]opts.LineData, len(t.Rows))
		for i, r := range t.Rows {
			data[i] = opts.LineData{Value: chartValue(r[j])}
		}
		line.AddSeries(Label(t.Columns[j].Name), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	}
	return line
}

// yearAxis lists the distinct years of t in row order and their positions.
func yearAxis(t models.Table) ([]string, map[int]int) {
	index := make(map[int]int)
	var labels []string
	for _, r := range t.Rows {
		y := r[0].(int)
		if _, ok := index[y]; !ok {
			index[y] = len(labels)
			labels = append(labels, strconv.Itoa(y))
		}
	}
	return labels, index
}

func barChart(t models.Table) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: t.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	countryCol := t.Index(engine.ColCountry)
	valCol := len(t.Columns) - 1

	labels := make([]string, len(t.Rows))
	data := make([]opts.BarData, len(t.Rows))
	for i, r := range t.Rows {
		labels[i] = r[countryCol].(string)
		data[i] = opts.BarData{Value: chartValue(r[valCol])}
	}
	bar.SetXAxis(labels)
	bar.AddSeries(Label(t.Columns[valCol].Name), data)
	return bar
}

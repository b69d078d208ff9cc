package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/pilgrimcast/core/audit"
)

// ChartTitle is the title of the HTML chart.
const ChartTitle = "Visitor forecast"

// WriteChart renders successful predictions as an HTML line chart with the
// confidence band drawn as two extra series. Failed requests are skipped.
func WriteChart(w io.Writer, recs []audit.Record) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: ChartTitle}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Request time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Visitors"}),
	)

	var xAxis []string
	var visitors, lower, upper []opts.LineData
	for _, r := range recs {
		if r.Result == nil {
			continue
		}
		xAxis = append(xAxis, r.Timestamp.UTC().Format(time.DateTime))
		visitors = append(visitors, opts.LineData{Value: r.Result.PredictedVisitors})
		lower = append(lower, opts.LineData{Value: r.Result.ConfidenceInterval.Lower})
		upper = append(upper, opts.LineData{Value: r.Result.ConfidenceInterval.Upper})
	}
	line.SetXAxis(xAxis).
		AddSeries("predicted", visitors).
		AddSeries("lower", lower).
		AddSeries("upper", upper)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

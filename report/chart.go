package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	trafficcount "github.com/swdee/go-trafficcount"
)

// WriteChart renders an HTML line chart of the counts per category and the
// total for each window
func WriteChart(w io.Writer, reports []trafficcount.WindowReport) error {

	// union of all categories seen across the windows
	seen := make(map[string]bool)

	for _, r := range reports {
		for label := range r.PerType {
			seen[label] = true
		}
	}

	labels := make([]string, 0, len(seen))

	for label := range seen {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	xAxis := make([]string, len(reports))
	totals := make([]opts.LineData, len(reports))

	for i, r := range reports {
		xAxis[i] = r.End.Format("15:04:05")
		totals[i] = opts.LineData{
			Value: r.Total,
			Name:  fmt.Sprintf("bayes %s, markov %s", r.Bayes, r.Markov),
		}
	}

	subtitle := "no windows"

	if len(reports) > 0 {
		subtitle = fmt.Sprintf("%d windows from %s to %s", len(reports),
			reports[0].Start.Format("2006-01-02 15:04:05"),
			reports[len(reports)-1].End.Format("15:04:05"))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Traffic Count", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Vehicles per window", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	line.SetXAxis(xAxis)

	for _, label := range labels {

		data := make([]opts.LineData, len(reports))

		for i, r := range reports {
			data[i] = opts.LineData{Value: r.PerType[label]}
		}

		line.AddSeries(label, data)
	}

	line.AddSeries("total", totals)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

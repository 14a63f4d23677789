package measure

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an interactive HTML scatter of observations, one series per area
func RenderChart(w io.Writer, byArea map[string][]Observation) error {
	names := make([]string, 0, len(byArea))
	total := 0
	for name, obs := range byArea {
		names = append(names, name)
		total += len(obs)
	}
	sort.Strings(names)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pedestrian flow", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fundamental diagram", Subtitle: fmt.Sprintf("areas=%d observations=%d", len(names), total)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "density", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "speed", NameLocation: "middle", NameGap: 30}),
	)

	for _, name := range names {
		obs := byArea[name]
		data := make([]opts.ScatterData, 0, len(obs))
		for _, o := range obs {
			data = append(data, opts.ScatterData{Value: []interface{}{o.Density, o.Speed}})
		}
		scatter.AddSeries(name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	return scatter.Render(w)
}

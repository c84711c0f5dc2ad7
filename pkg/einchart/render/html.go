package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
)

// ChartID is the DOM id of the chart element on the HTML page.
const ChartID = "einchart"

// NewLineChart builds the echarts line chart of c. Categories are the
// observation dates; the axis shows the collapsed month labels. The tooltip
// follows the anchor of the points under the cursor.
func NewLineChart(c *models.Chart, o Options) *charts.Line {
	width, height := o.size()
	cfg := c.Config

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: cfg.Title,
			ChartID:   ChartID,
			Width:     fmt.Sprintf("%dpx", width),
			Height:    fmt.Sprintf("%dpx", height),
		}),
		charts.WithTitleOpts(opts.Title{Title: cfg.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Interval:  "0",
				Formatter: tickFormatter(cfg.Labels),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min:         cfg.YAxis.Min,
			Max:         cfg.YAxis.Max,
			SplitNumber: max(c.Scale.Ticks(), 1),
		}),
	)

	line.SetXAxis(cfg.Dates)
	for _, ds := range cfg.Datasets {
		data := make([]opts.LineData, len(ds.Values))
		for i, v := range ds.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(ds.Label, data)
	}
	line.AddJSFuncs(anchorScript(cfg))
	return line
}

// WriteHTML writes a standalone HTML page with the interactive chart.
func WriteHTML(w io.Writer, c *models.Chart, o Options) error {
	return NewLineChart(c, o).Render(w)
}

// tickFormatter returns the axis label formatter showing the collapsed
// label of each category. Function bodies must avoid double quotes since
// echarts options are embedded as JSON.
func tickFormatter(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = "'" + strings.Map(func(r rune) rune {
			if r == '\'' || r == '"' || r == '\\' {
				return -1
			}
			return r
		}, l) + "'"
	}
	return opts.FuncOpts("function (value, index) { return [" + strings.Join(quoted, ",") + "][index] || ''; }")
}

// anchorScript installs a tooltip position function on the page. It picks
// the estimate point when active, else the bound points (the vertical
// midpoint of both), else the centroid of the active points, else the
// cursor, and adds the bias. go-echarts strips newlines from page scripts,
// so every statement ends with a semicolon.
func anchorScript(cfg models.ChartConfig) string {
	bands := make(map[string]models.Band, len(cfg.Datasets))
	for _, ds := range cfg.Datasets {
		bands[ds.Label] = ds.Band
	}
	names, _ := json.Marshal(bands)
	bias, _ := json.Marshal([]float64{cfg.TooltipBias.X, cfg.TooltipBias.Y})

	return fmt.Sprintf(`(function () {
	var chart = echarts.getInstanceByDom(document.getElementById('%s'));
	var bands = %s;
	var bias = %s;
	chart.setOption({tooltip: {position: function (point, params) {
		var list = [].concat(params || []);
		var first = null, low = null, high = null, sx = 0, sy = 0, n = 0;
		for (var i = 0; i < list.length; i++) {
			var p = list[i];
			var px = chart.convertToPixel({seriesIndex: p.seriesIndex}, [p.dataIndex, p.value]);
			if (!px || isNaN(px[0]) || isNaN(px[1])) { continue; }
			var band = bands[p.seriesName];
			if (band === '%s') { return [px[0] + bias[0], px[1] + bias[1]]; }
			if (band === '%s' && !low) { low = px; }
			if (band === '%s' && !high) { high = px; }
			if (!first && (band === '%s' || band === '%s')) { first = px; }
			sx += px[0]; sy += px[1]; n++;
		}
		var at = point;
		if (low && high) { at = [first[0], (low[1] + high[1]) / 2]; }
		else if (low) { at = low; }
		else if (high) { at = high; }
		else if (n > 0) { at = [sx / n, sy / n]; }
		return [at[0] + bias[0], at[1] + bias[1]];
	}}});
})();`, ChartID, names, bias,
		models.BandEstimate,
		models.BandLowBound, models.BandHighBound,
		models.BandLowBound, models.BandHighBound)
}

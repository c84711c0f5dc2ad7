package einchart

import (
	"context"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/parser"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/scale"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/series"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/tooltip"
)

// Fetcher retrieves the raw CSV text.
type Fetcher interface {
	Fetch(ctx context.Context) (source.Result, error)
}

// Build fetches the CSV text and builds the chart from it.
func Build(ctx context.Context, f Fetcher, opts Options) (*models.Chart, error) {
	res, err := f.Fetch(ctx)
	if err != nil {
		return nil, NewStageError(StageFetch, "", err)
	}

	chart, err := BuildText(res.Text, opts)
	if err != nil {
		return nil, err
	}
	chart.Source = res.Source
	return chart, nil
}

// BuildText builds the chart from CSV text. Scale and labels are derived
// from the normalized series on every call.
func BuildText(text string, opts Options) (*models.Chart, error) {
	rows, err := parser.ParseRecords(text)
	if err != nil {
		return nil, NewStageError(StageParse, "", err)
	}

	s := series.NormalizeWith(rows, series.Options{RetentionMonths: opts.Retention()})
	axis := scale.Compute(s.Observations)

	return &models.Chart{
		Series: s,
		Scale:  axis,
		Config: NewChartConfig(opts.Title, s, axis, opts.Selector()),
	}, nil
}

// NewChartConfig assembles the renderer configuration: the three bands in
// drawing order, a value axis from 0 to the scale maximum and the tooltip
// anchoring of sel.
func NewChartConfig(title string, s models.Series, axis models.AxisScale, sel tooltip.Selector) models.ChartConfig {
	datasets := make([]models.Dataset, 0, len(models.Bands))
	for _, b := range models.Bands {
		datasets = append(datasets, models.Dataset{
			Band:   b,
			Label:  b.Label(),
			Values: s.Values(b),
		})
	}

	labels := s.Labels
	if labels == nil {
		labels = []string{}
	}

	return models.ChartConfig{
		Title:    title,
		Dates:    s.Dates(),
		Labels:   labels,
		Datasets: datasets,
		YAxis: models.ValueAxis{
			Min:  0,
			Max:  axis.Max,
			Step: axis.Step,
		},
		TooltipBias: sel.Bias,
		Anchor:      sel.Func(),
	}
}

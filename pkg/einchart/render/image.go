package render

import (
	"fmt"
	"io"
	"time"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// bandColors are the line colors of the bands.
var bandColors = map[models.Band]drawing.Color{
	models.BandEstimate:  {R: 33, G: 102, B: 172, A: 255},
	models.BandLowBound:  {R: 146, G: 197, B: 222, A: 255},
	models.BandHighBound: {R: 214, G: 96, B: 77, A: 255},
}

// NewImageChart builds the go-chart rendition of c.
func NewImageChart(c *models.Chart, o Options) (*chart.Chart, error) {
	obs := c.Series.Observations
	if len(obs) == 0 {
		return nil, ErrNoData
	}
	width, height := o.size()

	dates := make([]time.Time, len(obs))
	for i, ob := range obs {
		dates[i] = ob.Date
	}

	// go-chart rejects zero-width ranges.
	minX, maxX := dates[0], dates[len(dates)-1]
	if !maxX.After(minX) {
		minX, maxX = minX.AddDate(0, 0, -1), maxX.AddDate(0, 0, 1)
	}
	axis := c.Config.YAxis
	maxY := axis.Max
	if maxY <= axis.Min {
		maxY = axis.Min + max(axis.Step, 1)
	}

	graph := &chart.Chart{
		Title:  c.Config.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Ticks: xTicks(c.Series, minX, maxX),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(minX),
				Max: chart.TimeToFloat64(maxX),
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: axis.Min, Max: maxY},
			Ticks: yTicks(axis.Min, maxY, axis.Step),
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 220, G: 220, B: 220, A: 255},
				StrokeWidth: 1,
			},
		},
	}

	for _, ds := range c.Config.Datasets {
		xs, ys := dates, ds.Values
		// A time series needs two values; a single observation is drawn
		// flat across the padded range.
		if len(obs) == 1 {
			xs = []time.Time{minX, maxX}
			ys = []float64{ds.Values[0], ds.Values[0]}
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name: ds.Label,
			Style: chart.Style{
				StrokeColor: bandColors[ds.Band],
				StrokeWidth: 2,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(graph)}

	return graph, nil
}

// WriteImage writes the chart as PNG or SVG.
func WriteImage(w io.Writer, format Format, c *models.Chart, o Options) error {
	var provider chart.RendererProvider
	switch format {
	case FormatPNG:
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return fmt.Errorf("invalid image format: %q", format)
	}

	graph, err := NewImageChart(c, o)
	if err != nil {
		return err
	}
	return graph.Render(provider, w)
}

// xTicks places a tick at each labelled observation.
// xTicks places a tick at each labelled observation. go-chart derives the
// axis range from the ticks when any are given, so unlabelled ticks mark
// both ends of the padded range.
func xTicks(s models.Series, minX, maxX time.Time) []chart.Tick {
	ticks := []chart.Tick{{Value: chart.TimeToFloat64(minX)}}
	for i, o := range s.Observations {
		if i >= len(s.Labels) || s.Labels[i] == "" {
			continue
		}
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(o.Date),
			Label: s.Labels[i],
		})
	}
	return append(ticks, chart.Tick{Value: chart.TimeToFloat64(maxX)})
}

func yTicks(min, max, step float64) []chart.Tick {
	if step <= 0 {
		step = max - min
	}
	if step <= 0 {
		return []chart.Tick{{Value: min, Label: chart.FloatValueFormatter(min)}}
	}
	var ticks []chart.Tick
	for v := min; v <= max+step/2; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: chart.FloatValueFormatter(v)})
	}
	return ticks
}

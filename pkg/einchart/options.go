// Package einchart builds the three-band estimate chart from CSV text:
// parsing, normalization, axis scaling and tooltip anchoring.
package einchart

import (
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/series"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/tooltip"
)

// DefaultTitle is the chart title used when none is configured.
const DefaultTitle = "Estimate"

// Options configures chart building.
type Options struct {
	// Title is the chart title.
	Title string
	// RetentionMonths is the number of whole months kept before the month
	// of the latest observation. If nil, defaults to 2.
	RetentionMonths *int
	// TooltipBias is added to every tooltip anchor.
	// If nil, defaults to 10 pixels up.
	TooltipBias *models.Point
}

// DefaultOptions returns default build options.
func DefaultOptions() Options {
	return Options{
		Title: DefaultTitle,
	}
}

// Retention returns the retention window in months.
func (o Options) Retention() int {
	if o.RetentionMonths != nil && *o.RetentionMonths >= 0 {
		return *o.RetentionMonths
	}
	return series.DefaultRetentionMonths
}

// Bias returns the tooltip bias.
func (o Options) Bias() models.Point {
	if o.TooltipBias != nil {
		return *o.TooltipBias
	}
	return tooltip.DefaultBias
}

// Selector returns the tooltip anchor selector for these options.
func (o Options) Selector() tooltip.Selector {
	return tooltip.NewSelector(o.Bias())
}

// Package scale derives the value axis of the band chart.
package scale

import (
	"math"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
)

// TargetGridlines is the approximate number of gridlines aimed for.
const TargetGridlines = 5

// Compute derives the axis maximum and gridline step from the largest
// value across all three bands. An empty series yields {Max: 0, Step: 1}.
func Compute(observations []models.Observation) models.AxisScale {
	return ForMax(RawMax(observations))
}

// RawMax returns the largest value across all bands, or 0 for no
// observations. Negative maxima are clamped to 0 since the axis starts at 0.
func RawMax(observations []models.Observation) float64 {
	rawMax := 0.0
	for _, o := range observations {
		if m := o.Max(); m > rawMax {
			rawMax = m
		}
	}
	return rawMax
}

// ForMax returns the scale for a known maximum value.
func ForMax(rawMax float64) models.AxisScale {
	if rawMax <= 0 || math.IsNaN(rawMax) || math.IsInf(rawMax, 0) {
		return models.AxisScale{Max: 0, Step: 1}
	}

	step := math.Ceil(math.Ceil(rawMax)/TargetGridlines + 1)
	if step < 1 {
		step = 1
	}

	return models.AxisScale{
		Max:  math.Ceil(rawMax/step) * step,
		Step: step,
	}
}

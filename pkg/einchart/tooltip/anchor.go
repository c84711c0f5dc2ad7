// Package tooltip picks the point a chart tooltip is anchored to.
package tooltip

import "github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"

// DefaultBias lifts the tooltip slightly above the anchored point.
var DefaultBias = models.Point{X: 0, Y: -10}

// Selector chooses tooltip anchors. The zero value applies no bias.
type Selector struct {
	// Bias is added to every returned point.
	Bias models.Point
}

// NewSelector returns a Selector with the given bias.
func NewSelector(bias models.Point) Selector {
	return Selector{Bias: bias}
}

// SelectAnchor selects an anchor with DefaultBias.
func SelectAnchor(active []models.ChartElement, cursor models.Point) models.Point {
	return Selector{Bias: DefaultBias}.Select(active, cursor)
}

// Func returns s.Select as a models.AnchorFunc for renderer configs.
func (s Selector) Func() models.AnchorFunc {
	return s.Select
}

// Select picks the anchor for the elements under the cursor:
// the estimate point if it is active, else the bound points (their
// vertical midpoint when both are active), else the centroid of all
// active points. Without any positioned element the cursor is used.
func (s Selector) Select(active []models.ChartElement, cursor models.Point) models.Point {
	return s.anchor(active, cursor).Offset(s.Bias)
}

func (s Selector) anchor(active []models.ChartElement, cursor models.Point) models.Point {
	if len(active) == 0 {
		return cursor
	}

	var first, low, high *models.Point
	var sum models.Point
	positioned := 0

	for _, e := range active {
		if e.Position == nil {
			continue
		}
		switch e.Band {
		case models.BandEstimate:
			return *e.Position
		case models.BandLowBound:
			if low == nil {
				low = e.Position
			}
		case models.BandHighBound:
			if high == nil {
				high = e.Position
			}
		}
		if first == nil && (e.Band == models.BandLowBound || e.Band == models.BandHighBound) {
			first = e.Position
		}
		sum.X += e.Position.X
		sum.Y += e.Position.Y
		positioned++
	}

	switch {
	case low != nil && high != nil:
		return models.Point{X: first.X, Y: (low.Y + high.Y) / 2}
	case low != nil:
		return *low
	case high != nil:
		return *high
	case positioned > 0:
		n := float64(positioned)
		return models.Point{X: sum.X / n, Y: sum.Y / n}
	}
	return cursor
}

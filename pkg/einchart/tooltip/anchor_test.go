package tooltip

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
)

func at(b models.Band, x, y float64) models.ChartElement {
	return models.ChartElement{Band: b, Position: &models.Point{X: x, Y: y}}
}

func TestSelectAnchor(t *testing.T) {
	cursor := models.Point{X: 100, Y: 200}

	tests := []struct {
		name     string
		active   []models.ChartElement
		expected models.Point
	}{
		{
			name:     "no active elements uses the cursor",
			active:   nil,
			expected: models.Point{X: 100, Y: 190},
		},
		{
			name: "estimate wins over bounds",
			active: []models.ChartElement{
				at(models.BandLowBound, 1, 1),
				at(models.BandEstimate, 5, 5),
				at(models.BandHighBound, 9, 9),
			},
			expected: models.Point{X: 5, Y: -5},
		},
		{
			name: "both bounds anchor at their midpoint",
			active: []models.ChartElement{
				at(models.BandLowBound, 10, 20),
				at(models.BandHighBound, 10, 40),
			},
			expected: models.Point{X: 10, Y: 20},
		},
		{
			name: "midpoint takes x from the first bound element",
			active: []models.ChartElement{
				at(models.BandHighBound, 12, 40),
				at(models.BandLowBound, 10, 20),
			},
			expected: models.Point{X: 12, Y: 20},
		},
		{
			name: "single bound",
			active: []models.ChartElement{
				at(models.BandHighBound, 7, 30),
			},
			expected: models.Point{X: 7, Y: 20},
		},
		{
			name: "unresolved estimate falls back to bounds",
			active: []models.ChartElement{
				{Band: models.BandEstimate},
				at(models.BandLowBound, 3, 50),
			},
			expected: models.Point{X: 3, Y: 40},
		},
		{
			name: "unknown series use the centroid",
			active: []models.ChartElement{
				at("Forecast", 0, 0),
				at("Baseline", 10, 30),
			},
			expected: models.Point{X: 5, Y: 5},
		},
		{
			name: "no positioned element uses the cursor",
			active: []models.ChartElement{
				{Band: models.BandEstimate},
				{Band: "Other"},
			},
			expected: models.Point{X: 100, Y: 190},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SelectAnchor(tt.active, cursor))
		})
	}
}

func TestSelectorBias(t *testing.T) {
	s := NewSelector(models.Point{X: 2, Y: 3})
	require.Equal(t, models.Point{X: 7, Y: 8}, s.Select([]models.ChartElement{at(models.BandEstimate, 5, 5)}, models.Point{}))

	var zero Selector
	require.Equal(t, models.Point{X: 1, Y: 1}, zero.Func()(nil, models.Point{X: 1, Y: 1}))
}

func TestSelectAnchorFromJSON(t *testing.T) {
	var active []models.ChartElement
	err := json.Unmarshal([]byte(`[
		{"series": "5th Percentile", "position": {"x": 10, "y": 20}},
		{"series": "highbound", "position": {"x": 10, "y": 40}}
	]`), &active)
	require.NoError(t, err)

	require.Equal(t, models.Point{X: 10, Y: 20}, SelectAnchor(active, models.Point{}))
}

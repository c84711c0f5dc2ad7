package models

import (
	"fmt"
	"strings"
)

// Band identifies one of the three rendered series.
type Band string

const (
	// BandEstimate is the point estimate line.
	BandEstimate Band = "Estimate"
	// BandLowBound is the 5th percentile line.
	BandLowBound Band = "LowBound"
	// BandHighBound is the 95th percentile line.
	BandHighBound Band = "HighBound"
)

// Bands lists the bands in drawing order.
var Bands = []Band{BandEstimate, BandLowBound, BandHighBound}

// Label returns the legend label of the band, which is also its CSV column.
func (b Band) Label() string {
	switch b {
	case BandLowBound:
		return ColumnLowBound
	case BandHighBound:
		return ColumnHighBound
	case BandEstimate:
		return ColumnEstimate
	}
	return string(b)
}

// ParseBand resolves a band from its identifier or its legend label.
// Unknown names are returned unchanged with ok set to false.
func ParseBand(s string) (b Band, ok bool) {
	name := strings.TrimSpace(s)
	for _, known := range Bands {
		if strings.EqualFold(name, string(known)) || strings.EqualFold(name, known.Label()) {
			return known, true
		}
	}
	return Band(name), false
}

// UnmarshalText accepts both identifiers and legend labels.
func (b *Band) UnmarshalText(text []byte) error {
	*b, _ = ParseBand(string(text))
	return nil
}

// Point is a pixel coordinate on the rendered chart.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset returns p shifted by d.
func (p Point) Offset(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// ChartElement is a rendered point that is active under the cursor.
type ChartElement struct {
	// Band is the series the element belongs to.
	Band Band `json:"series"`
	// Position is the pixel position (nil while unresolved).
	Position *Point `json:"position,omitempty"`
}

// Dataset is one band prepared for a renderer.
type Dataset struct {
	// Band identifies the dataset.
	Band Band `json:"band"`
	// Label is the legend label.
	Label string `json:"label"`
	// Values holds one value per observation.
	Values []float64 `json:"values"`
}

// ValueAxis holds the bounds and gridline step of the value axis.
type ValueAxis struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// AnchorFunc picks the tooltip anchor for the active elements.
type AnchorFunc func(active []ChartElement, cursor Point) Point

// ChartConfig is the configuration consumed by a rendering collaborator.
type ChartConfig struct {
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// Dates holds the observation dates (YYYY-MM-DD).
	Dates []string `json:"dates"`
	// Labels holds the collapsed tick labels.
	Labels []string `json:"labels"`
	// Datasets holds the three bands in drawing order.
	Datasets []Dataset `json:"datasets"`
	// YAxis is the value axis.
	YAxis ValueAxis `json:"y_axis"`
	// TooltipBias is the pixel offset added to every tooltip anchor.
	TooltipBias Point `json:"tooltip_bias"`
	// Anchor positions the tooltip; it is not serialized.
	Anchor AnchorFunc `json:"-"`
}

// TickLabel returns the label for the tick at index i, or "" when out of range.
func (c ChartConfig) TickLabel(i int) string {
	if i < 0 || i >= len(c.Labels) {
		return ""
	}
	return c.Labels[i]
}

// Chart is the output of the pipeline for one input text.
type Chart struct {
	// Source names the retrieval attempt that produced the text.
	Source string `json:"source,omitempty"`
	// Series is the normalized series.
	Series Series `json:"series"`
	// Scale is the value axis scale derived from Series.
	Scale AxisScale `json:"scale"`
	// Config is the renderer configuration.
	Config ChartConfig `json:"config"`
}

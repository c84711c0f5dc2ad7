package models

import "time"

// Series is the normalized, windowed and deduplicated time series
// together with its collapsed axis labels.
type Series struct {
	// Observations are ordered by strictly increasing calendar day.
	Observations []Observation `json:"observations"`
	// Labels holds one axis label per observation; only the first
	// observation of each month carries the month abbreviation.
	Labels []string `json:"labels"`
	// Latest is the latest valid date seen in the input (zero if none).
	Latest time.Time `json:"latest,omitzero"`
	// Floor is the retention window lower bound (zero if none).
	Floor time.Time `json:"floor,omitzero"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Observations)
}

// Empty reports whether the series holds no observations.
func (s Series) Empty() bool {
	return len(s.Observations) == 0
}

// Dates returns the observation dates formatted as YYYY-MM-DD.
func (s Series) Dates() []string {
	out := make([]string, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Date.Format(time.DateOnly)
	}
	return out
}

// Values returns the values of one band in series order.
func (s Series) Values(b Band) []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Value(b)
	}
	return out
}

// AxisScale describes the value axis of the rendered chart.
type AxisScale struct {
	// Max is the smallest multiple of Step at or above the observed maximum.
	Max float64 `json:"max"`
	// Step is the gridline interval.
	Step float64 `json:"step"`
}

// Ticks returns the number of gridline intervals between 0 and Max.
func (a AxisScale) Ticks() int {
	if a.Step <= 0 {
		return 0
	}
	return int(a.Max / a.Step)
}

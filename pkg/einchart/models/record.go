// Package models defines data structures shared by the einchart pipeline.
package models

import "time"

// Column names recognised in the source CSV header.
const (
	ColumnDate      = "Date"
	ColumnEstimate  = "Estimate"
	ColumnLowBound  = "5th Percentile"
	ColumnHighBound = "95th Percentile"
)

// RawRow maps a header name to the raw cell value of one CSV line.
type RawRow map[string]string

// Observation is a single normalized data point of the series.
type Observation struct {
	// Date is the calendar day of the observation (UTC midnight).
	Date time.Time `json:"date"`
	// Estimate is the point estimate.
	Estimate float64 `json:"estimate"`
	// LowBound is the 5th percentile of the estimate.
	LowBound float64 `json:"low_bound"`
	// HighBound is the 95th percentile of the estimate.
	HighBound float64 `json:"high_bound"`
}

// Max returns the largest of the three band values.
func (o Observation) Max() float64 {
	m := o.Estimate
	if o.LowBound > m {
		m = o.LowBound
	}
	if o.HighBound > m {
		m = o.HighBound
	}
	return m
}

// Value returns the value of the given band.
func (o Observation) Value(b Band) float64 {
	switch b {
	case BandLowBound:
		return o.LowBound
	case BandHighBound:
		return o.HighBound
	default:
		return o.Estimate
	}
}

// Package series normalizes parsed rows into an ordered, windowed,
// day-deduplicated series with collapsed month labels.
package series

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/parser"
)

// DefaultRetentionMonths is the number of whole months kept before the
// month of the latest observation.
const DefaultRetentionMonths = 2

// Options configures normalization.
type Options struct {
	// RetentionMonths sets the window floor to the first day of the month
	// this many months before the latest observation.
	RetentionMonths int
}

// DefaultOptions returns default normalization options.
func DefaultOptions() Options {
	return Options{RetentionMonths: DefaultRetentionMonths}
}

// Normalize normalizes rows with the default options.
func Normalize(rows []models.RawRow) models.Series {
	return NormalizeWith(rows, DefaultOptions())
}

// NormalizeWith filters rows with invalid dates, keeps the retention window,
// sorts by date, keeps the first row of each calendar day and builds the
// label sequence.
func NormalizeWith(rows []models.RawRow, opts Options) models.Series {
	if opts.RetentionMonths < 0 {
		opts.RetentionMonths = 0
	}

	var latest time.Time
	candidates := make([]models.Observation, 0, len(rows))
	for _, row := range rows {
		if row[models.ColumnDate] == "" || row[models.ColumnEstimate] == "" {
			continue
		}
		date, ok := parser.ParseDate(row[models.ColumnDate])
		if !ok {
			continue
		}
		if date.After(latest) {
			latest = date
		}
		candidates = append(candidates, models.Observation{
			Date:      date,
			Estimate:  parser.ParseNumber(row[models.ColumnEstimate]),
			LowBound:  parser.ParseNumber(row[models.ColumnLowBound]),
			HighBound: parser.ParseNumber(row[models.ColumnHighBound]),
		})
	}

	if len(candidates) == 0 {
		return models.Series{Observations: []models.Observation{}, Labels: []string{}}
	}

	floor := WindowFloor(latest, opts.RetentionMonths)
	kept := candidates[:0]
	for _, o := range candidates {
		if !o.Date.Before(floor) {
			kept = append(kept, o)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date)
	})

	observations := Dedupe(kept)
	return models.Series{
		Observations: observations,
		Labels:       Labels(observations),
		Latest:       latest,
		Floor:        floor,
	}
}

// WindowFloor returns the first day of the month that lies the given
// number of calendar months before latest.
func WindowFloor(latest time.Time, months int) time.Time {
	y, m, _ := latest.Date()
	return time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, time.UTC)
}

// Dedupe keeps the first observation of each calendar day. The input must
// be sorted by date.
func Dedupe(sorted []models.Observation) []models.Observation {
	out := make([]models.Observation, 0, len(sorted))
	for _, o := range sorted {
		if n := len(out); n > 0 && sameDay(out[n-1].Date, o.Date) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Labels returns one label per observation: the upper-case month
// abbreviation on the first observation of each (month, year), "" otherwise.
func Labels(observations []models.Observation) []string {
	labels := make([]string, len(observations))
	seen := make(map[string]bool)
	for i, o := range observations {
		key := monthKey(o.Date)
		if seen[key] {
			continue
		}
		seen[key] = true
		labels[i] = MonthAbbrev(o.Date.Month())
	}
	return labels
}

// MonthAbbrev returns the three-letter upper-case month abbreviation.
func MonthAbbrev(m time.Month) string {
	return strings.ToUpper(m.String()[:3])
}

// Rows converts a series back into raw rows, so that it can be fed to
// Normalize again.
func Rows(s models.Series) []models.RawRow {
	rows := make([]models.RawRow, len(s.Observations))
	for i, o := range s.Observations {
		rows[i] = models.RawRow{
			models.ColumnDate:      o.Date.Format(time.DateOnly),
			models.ColumnEstimate:  formatFloat(o.Estimate),
			models.ColumnLowBound:  formatFloat(o.LowBound),
			models.ColumnHighBound: formatFloat(o.HighBound),
		}
	}
	return rows
}

func monthKey(t time.Time) string {
	return t.Month().String() + "-" + strconv.Itoa(t.Year())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

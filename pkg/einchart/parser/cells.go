package parser

import (
	"strings"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/xuri/excelize/v2"
)

// ColumnLabel is the header of the axis label column in exported sheets.
const ColumnLabel = "Label"

// ReadSeriesSheet reads the observation rows of an exported series sheet.
// The first row is the header; columns are located by name so reordered
// sheets are read correctly. Rows without a valid date are skipped.
func ReadSeriesSheet(f *excelize.File, sheetName string) ([]models.Observation, []string, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for colIdx, name := range rows[0] {
		index[strings.TrimSpace(name)] = colIdx
	}
	if _, ok := index[models.ColumnDate]; !ok {
		return nil, nil, nil
	}

	cell := func(row []string, column string) string {
		colIdx, ok := index[column]
		if !ok || colIdx >= len(row) {
			return ""
		}
		return row[colIdx]
	}

	var observations []models.Observation
	var labels []string
	for _, row := range rows[1:] {
		date, ok := ParseDate(cell(row, models.ColumnDate))
		if !ok {
			continue
		}
		observations = append(observations, models.Observation{
			Date:      date,
			Estimate:  ParseNumber(cell(row, models.ColumnEstimate)),
			LowBound:  ParseNumber(cell(row, models.ColumnLowBound)),
			HighBound: ParseNumber(cell(row, models.ColumnHighBound)),
		})
		labels = append(labels, cell(row, ColumnLabel))
	}

	return observations, labels, nil
}

// ResolveSeriesNames fills in series names that are stored only as a cell
// reference (e.g. Series!$C$1) by reading the referenced cell.
func ResolveSeriesNames(f *excelize.File, chart *models.WorkbookChart) {
	for i, s := range chart.Series {
		if s.Name != "" || s.NameRange == "" {
			continue
		}
		idx := strings.LastIndex(s.NameRange, "!")
		if idx < 0 {
			continue
		}
		sheet := strings.Trim(s.NameRange[:idx], "'")
		cellName := strings.ReplaceAll(s.NameRange[idx+1:], "$", "")
		if v, err := f.GetCellValue(sheet, cellName); err == nil {
			chart.Series[i].Name = v
		}
	}
}

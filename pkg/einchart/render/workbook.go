package render

import (
	"io"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/parser"
	"github.com/xuri/excelize/v2"
)

// SeriesSheet is the name of the data sheet of exported workbooks.
const SeriesSheet = "Series"

// seriesHeader is the header row of the data sheet. Band columns start at C.
var seriesHeader = []any{
	models.ColumnDate,
	parser.ColumnLabel,
	models.ColumnEstimate,
	models.ColumnLowBound,
	models.ColumnHighBound,
}

// NewWorkbook builds a workbook holding the series rows and a native line
// chart whose value axis carries the computed maximum and step. An empty
// series yields a workbook with the header row only.
func NewWorkbook(c *models.Chart) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(SeriesSheet, "A1", &seriesHeader); err != nil {
		f.Close()
		return nil, err
	}

	s := c.Series
	for i, o := range s.Observations {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		label := ""
		if i < len(s.Labels) {
			label = s.Labels[i]
		}
		row := []any{o.Date.Format("2006-01-02"), label, o.Estimate, o.LowBound, o.HighBound}
		if err := f.SetSheetRow(SeriesSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if s.Empty() {
		return f, nil
	}

	if err := f.AddChart(SeriesSheet, "G2", lineChart(c)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWorkbook writes the xlsx export of c.
func WriteWorkbook(w io.Writer, c *models.Chart) error {
	f, err := NewWorkbook(c)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

func lineChart(c *models.Chart) *excelize.Chart {
	last := c.Series.Len() + 1
	categories := rangeRef(1, 2, last)

	var series []excelize.ChartSeries
	for i, ds := range c.Config.Datasets {
		col := 3 + bandColumn(ds.Band, i)
		series = append(series, excelize.ChartSeries{
			Name:       rangeRef(col, 1, 1),
			Categories: categories,
			Values:     rangeRef(col, 2, last),
		})
	}

	axis := c.Config.YAxis
	minimum, maximum := axis.Min, axis.Max
	chart := &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		YAxis: excelize.ChartAxis{
			Minimum:        &minimum,
			Maximum:        &maximum,
			MajorUnit:      axis.Step,
			MajorGridLines: true,
		},
		Dimension: excelize.ChartDimension{Width: 720, Height: 360},
	}
	if c.Config.Title != "" {
		chart.Title = []excelize.RichTextRun{{Text: c.Config.Title}}
	}
	return chart
}

// bandColumn returns the zero-based offset of a band column from column C.
func bandColumn(b models.Band, fallback int) int {
	for i, known := range models.Bands {
		if known == b {
			return i
		}
	}
	return fallback
}

// rangeRef returns an absolute reference such as Series!$C$2:$C$12.
func rangeRef(col, fromRow, toRow int) string {
	from, _ := excelize.CoordinatesToCellName(col, fromRow, true)
	if fromRow == toRow {
		return SeriesSheet + "!" + from
	}
	to, _ := excelize.CoordinatesToCellName(col, toRow, true)
	return SeriesSheet + "!" + from + ":" + to
}

package models

// WorkbookData represents an exported workbook read back for inspection.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets maps sheet name to SheetData.
	Sheets map[string]SheetData `json:"sheets"`
}

// WorkbookChart represents chart metadata found in a workbook.
type WorkbookChart struct {
	// Name is the chart name.
	Name string `json:"name,omitempty"`
	// ChartType is the chart type (e.g., Line).
	ChartType string `json:"chart_type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// YAxisRange is the Y-axis range [min, max] when available.
	YAxisRange []float64 `json:"y_axis_range,omitempty"`
	// YAxisMajorUnit is the Y-axis gridline step (0 if unset).
	YAxisMajorUnit float64 `json:"y_axis_major_unit,omitempty"`
	// Series is the list of series included in the chart.
	Series []WorkbookSeries `json:"series"`
}

// WorkbookSeries represents series metadata for a workbook chart.
type WorkbookSeries struct {
	// Name is the series display name.
	Name string `json:"name"`
	// NameRange is the range reference for the series name.
	NameRange string `json:"name_range,omitempty"`
	// XRange is the range reference for X axis values.
	XRange string `json:"x_range,omitempty"`
	// YRange is the range reference for Y axis values.
	YRange string `json:"y_range,omitempty"`
}

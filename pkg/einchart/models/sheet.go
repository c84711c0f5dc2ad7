package models

// SheetData represents the content of a single exported sheet.
type SheetData struct {
	// Observations contains the data rows of the sheet.
	Observations []Observation `json:"observations,omitempty"`
	// Labels contains the axis label column, parallel to Observations.
	Labels []string `json:"labels,omitempty"`
	// Charts contains charts anchored on the sheet.
	Charts []WorkbookChart `json:"charts,omitempty"`
}

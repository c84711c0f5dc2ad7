package einchart

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/parser"
	"github.com/xuri/excelize/v2"
)

// Inspect reads an exported workbook back: the series rows of every sheet
// and the charts anchored on it, with series names resolved from their
// cell references.
func Inspect(path string) (*models.WorkbookData, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, NewStageError(StageInspect, "", ErrFileNotFound)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewStageError(StageInspect, "", errors.Join(ErrInvalidFormat, err))
	}
	defer f.Close()

	sheets := make(map[string]models.SheetData)
	for _, sheetName := range f.GetSheetList() {
		observations, labels, err := parser.ReadSeriesSheet(f, sheetName)
		if err != nil {
			return nil, NewStageError(StageInspect, sheetName, err)
		}
		sheets[sheetName] = models.SheetData{
			Observations: observations,
			Labels:       labels,
		}
	}

	chartData, err := parser.ExtractCharts(path)
	if err != nil {
		return nil, NewStageError(StageInspect, "", err)
	}
	for sheetName, charts := range chartData {
		sheet, ok := sheets[sheetName]
		if !ok {
			continue
		}
		for i := range charts {
			parser.ResolveSeriesNames(f, &charts[i])
		}
		sheet.Charts = charts
		sheets[sheetName] = sheet
	}

	found := false
	for _, sheet := range sheets {
		if len(sheet.Observations) > 0 || len(sheet.Charts) > 0 {
			found = true
			break
		}
	}
	if !found {
		return nil, NewStageError(StageInspect, "", ErrNoData)
	}

	return &models.WorkbookData{
		BookName: filepath.Base(path),
		Sheets:   sheets,
	}, nil
}

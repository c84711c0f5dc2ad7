package einchart

import (
	"errors"
	"fmt"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/parser"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrNoData indicates a workbook holds no exported series.
var ErrNoData = errors.New("no series data")

// ErrSampleDisabled indicates every source failed and the built-in sample
// fallback is turned off.
var ErrSampleDisabled = source.ErrSourcesExhausted

// ParseError reports text without a header and at least one data line.
type ParseError = parser.ParseError

// Pipeline stages reported by StageError.
const (
	StageFetch   = "fetch"
	StageParse   = "parse"
	StageInspect = "inspect"
)

// StageError represents an error in one stage of the pipeline.
type StageError struct {
	Stage string
	// Sheet is set for inspection errors tied to a sheet.
	Sheet string
	Err   error
}

func (e *StageError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s error in sheet %q: %v", e.Stage, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stage, sheet string, err error) *StageError {
	return &StageError{
		Stage: stage,
		Sheet: sheet,
		Err:   err,
	}
}

// Package parser turns raw CSV text and exported workbooks into models.
package parser

import (
	"fmt"
	"strings"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
)

// ParseError reports input that does not contain a header and at least
// one data line.
type ParseError struct {
	// Lines is the number of non-blank lines found.
	Lines int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: need a header and at least one data line, got %d non-blank line(s)", e.Lines)
}

// ParseRecords parses comma separated text with a header line into rows.
// Rows without a Date or Estimate value are dropped.
func ParseRecords(text string) ([]models.RawRow, error) {
	lines := nonBlankLines(text)
	if len(lines) < 2 {
		return nil, &ParseError{Lines: len(lines)}
	}

	header := SplitLine(lines[0])
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.Trim(h, `"`))
	}

	rows := make([]models.RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := SplitLine(line)
		row := make(models.RawRow, len(header))
		for i, name := range header {
			if i < len(values) {
				row[name] = values[i]
			} else {
				row[name] = ""
			}
		}
		if row[models.ColumnDate] == "" || row[models.ColumnEstimate] == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SplitLine splits one CSV line into trimmed fields.
// A comma inside a quoted span does not end the field and a doubled
// quote inside a quoted span yields a literal quote.
func SplitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// nonBlankLines splits text on line breaks and drops blank lines.
func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

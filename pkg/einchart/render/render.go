// Package render turns a built chart into the output formats served by
// the CLI and the HTTP server.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
)

// ErrNoData indicates the chart has no observations to draw.
var ErrNoData = errors.New("no observations to render")

// Format is an output format.
type Format string

// Output formats.
const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHTML, FormatPNG, FormatSVG, FormatXLSX, FormatJSON}

// ParseFormat resolves a format name or file extension (".png").
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if name == "htm" {
		name = string(FormatHTML)
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %q (must be html, png, svg, xlsx or json)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Default canvas size in pixels.
const (
	DefaultWidth  = 900
	DefaultHeight = 400
)

// Options configures rendering.
type Options struct {
	// Width and Height size the HTML and image canvases (pixels).
	Width  int
	Height int
	// Pretty indents JSON output.
	Pretty bool
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Write renders c to w in the given format.
func Write(w io.Writer, format Format, c *models.Chart, opts Options) error {
	switch format {
	case FormatHTML:
		return WriteHTML(w, c, opts)
	case FormatPNG, FormatSVG:
		return WriteImage(w, format, c, opts)
	case FormatXLSX:
		return WriteWorkbook(w, c)
	case FormatJSON:
		return WriteJSON(w, c, opts.Pretty)
	}
	return fmt.Errorf("invalid format: %q", format)
}

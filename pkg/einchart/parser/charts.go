package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
)

// ErrPartNotFound indicates a workbook part referenced by the package is missing.
var ErrPartNotFound = errors.New("workbook part not found")

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":    "Line",
	"line3DChart":  "3DLine",
	"barChart":     "Bar",
	"areaChart":    "Area",
	"scatterChart": "XYScatter",
	"stockChart":   "Stock",
}

// chartRef is a chart anchored in a drawing.
type chartRef struct {
	name string
	rID  string
}

type xmlWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

type xmlRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// ExtractCharts reads the charts of an xlsx file, keyed by sheet name.
func ExtractCharts(xlsxPath string) (map[string][]models.WorkbookChart, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return extractCharts(&r.Reader)
}

func extractCharts(r *zip.Reader) (map[string][]models.WorkbookChart, error) {
	result := make(map[string][]models.WorkbookChart)

	var wb xmlWorkbook
	if err := unmarshalZipFile(r, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}

	wbRels, err := readRelationships(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}

	for _, sheet := range wb.Sheets {
		sheetPath, ok := wbRels[sheet.RID]
		if !ok {
			continue
		}
		sheetRels, err := readRelationships(r, sheetPath)
		if err != nil {
			continue
		}
		for _, drawingPath := range sheetRels {
			if !strings.Contains(drawingPath, "drawings/") {
				continue
			}
			charts := chartsFromDrawing(r, drawingPath)
			if len(charts) > 0 {
				result[sheet.Name] = append(result[sheet.Name], charts...)
			}
		}
	}

	return result, nil
}

// chartsFromDrawing parses every chart referenced by a drawing part.
func chartsFromDrawing(r *zip.Reader, drawingPath string) []models.WorkbookChart {
	data, err := readZipFile(r, drawingPath)
	if err != nil || data == nil {
		return nil
	}

	rels, err := readRelationships(r, drawingPath)
	if err != nil {
		return nil
	}

	var charts []models.WorkbookChart
	for _, ref := range parseDrawingForCharts(data) {
		chartPath, ok := rels[ref.rID]
		if !ok {
			continue
		}
		chartXML, err := readZipFile(r, chartPath)
		if err != nil || chartXML == nil {
			continue
		}
		chart := parseChartXML(chartXML)
		chart.Name = ref.name
		charts = append(charts, chart)
	}
	return charts
}

// parseDrawingForCharts lists the charts of a drawing in document order.
func parseDrawingForCharts(data []byte) []chartRef {
	var refs []chartRef
	var name string
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "cNvPr":
			name = attr(se, "name")
		case "chart":
			if id := attr(se, "id"); id != "" {
				refs = append(refs, chartRef{name: name, rID: id})
			}
		}
	}

	return refs
}

// parseChartXML parses a chart part.
func parseChartXML(data []byte) models.WorkbookChart {
	var chart models.WorkbookChart
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "chart" {
			walk(decoder, func(se xml.StartElement) bool {
				switch se.Name.Local {
				case "title":
					chart.Title = readRichText(decoder)
					return true
				case "plotArea":
					parsePlotArea(decoder, &chart)
					return true
				}
				return false
			})
		}
	}

	if chart.ChartType == "" {
		chart.ChartType = "unknown"
	}
	return chart
}

func parsePlotArea(decoder *xml.Decoder, chart *models.WorkbookChart) {
	walk(decoder, func(se xml.StartElement) bool {
		if ct, ok := ChartTypeMap[se.Name.Local]; ok {
			chart.ChartType = ct
			chart.Series = parseChartSeries(decoder)
			return true
		}
		if se.Name.Local == "valAx" {
			chart.YAxisRange, chart.YAxisMajorUnit = parseValueAxis(decoder)
			return true
		}
		return false
	})
}

func parseChartSeries(decoder *xml.Decoder) []models.WorkbookSeries {
	var series []models.WorkbookSeries
	walk(decoder, func(se xml.StartElement) bool {
		if se.Name.Local != "ser" {
			return false
		}
		var s models.WorkbookSeries
		walk(decoder, func(se xml.StartElement) bool {
			switch se.Name.Local {
			case "tx":
				s.Name, s.NameRange = parseSeriesName(decoder)
			case "cat":
				s.XRange = parseFormula(decoder)
			case "val":
				s.YRange = parseFormula(decoder)
			default:
				return false
			}
			return true
		})
		series = append(series, s)
		return true
	})
	return series
}

// parseSeriesName reads the literal name (c:v) and the name reference (c:f).
func parseSeriesName(decoder *xml.Decoder) (name, nameRange string) {
	walk(decoder, func(se xml.StartElement) bool {
		switch se.Name.Local {
		case "f":
			nameRange = strings.TrimSpace(readText(decoder))
		case "v":
			name = strings.TrimSpace(readText(decoder))
		default:
			return false
		}
		return true
	})
	return
}

func parseFormula(decoder *xml.Decoder) string {
	var f string
	walk(decoder, func(se xml.StartElement) bool {
		if se.Name.Local != "f" {
			return false
		}
		f = strings.TrimSpace(readText(decoder))
		return true
	})
	return f
}

// parseValueAxis reads the [min, max] scaling and the major unit of c:valAx.
func parseValueAxis(decoder *xml.Decoder) (axisRange []float64, majorUnit float64) {
	var min, max *float64
	walk(decoder, func(se xml.StartElement) bool {
		switch se.Name.Local {
		case "min":
			min = floatAttr(se, "val")
		case "max":
			max = floatAttr(se, "val")
		case "majorUnit":
			if v := floatAttr(se, "val"); v != nil {
				majorUnit = *v
			}
		case "title":
			readRichText(decoder)
			return true
		}
		return false
	})

	if min != nil && max != nil {
		axisRange = []float64{*min, *max}
	}
	return
}

// walk consumes the element whose start tag was just read. visit is called
// for each nested start element and returns true when it consumed the
// element itself.
func walk(decoder *xml.Decoder, visit func(se xml.StartElement) bool) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return
		}
		switch t := token.(type) {
		case xml.StartElement:
			if !visit(t) {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
}

// readText returns the character data of the current element.
func readText(decoder *xml.Decoder) string {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String()
}

// readRichText concatenates the a:t runs of a title element.
func readRichText(decoder *xml.Decoder) string {
	var b strings.Builder
	walk(decoder, func(se xml.StartElement) bool {
		if se.Name.Local != "t" {
			return false
		}
		b.WriteString(readText(decoder))
		return true
	})
	return strings.TrimSpace(b.String())
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func floatAttr(se xml.StartElement, name string) *float64 {
	v, err := strconv.ParseFloat(attr(se, name), 64)
	if err != nil {
		return nil
	}
	return &v
}

// readRelationships maps relationship ids of a part to resolved part paths.
func readRelationships(r *zip.Reader, partPath string) (map[string]string, error) {
	dir, file := path.Split(partPath)
	var rels xmlRelationships
	if err := unmarshalZipFile(r, path.Join(dir, "_rels", file+".rels"), &rels); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		out[rel.ID] = resolvePartPath(dir, rel.Target)
	}
	return out, nil
}

// resolvePartPath resolves a relationship target against the source directory.
func resolvePartPath(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(dir, target)
}

func unmarshalZipFile(r *zip.Reader, name string, v any) error {
	data, err := readZipFile(r, name)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%s: %w", name, ErrPartNotFound)
	}
	return xml.Unmarshal(data, v)
}

// readZipFile returns the content of a zip entry, or nil when it is absent.
func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

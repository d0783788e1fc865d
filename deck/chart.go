package deck

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/xuri/excelize/v2"
)

// ChartKind selects the plot type of a new chart.
type ChartKind string

const (
	ChartColumn ChartKind = "COLUMN"
	ChartLine   ChartKind = "LINE"
	ChartPie    ChartKind = "PIE"
	ChartBar    ChartKind = "BAR"
)

// ParseChartKind maps a caller-supplied name to a kind; unknown names
// produce a clustered column chart.
func ParseChartKind(s string) ChartKind {
	switch k := ChartKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case ChartColumn, ChartLine, ChartPie, ChartBar:
		return k
	}
	return ChartColumn
}

// Series is one named value series.
type Series struct {
	Name   string
	Values []float64
}

// ChartData is category data: one label per category, one value per
// category in each series.
type ChartData struct {
	Categories []string
	Series     []Series
}

const chartSheet = "Sheet1"

// AddChart adds a chart part with an embedded workbook holding data and
// appends a graphic frame referencing it.
func (s *Slide) AddChart(kind ChartKind, data ChartData, off Point, size Size, legend bool) (*Shape, error) {
	if s.pres == nil {
		return nil, ErrDetached
	}
	if len(data.Series) == 0 {
		return nil, fmt.Errorf("chart needs at least one series")
	}
	pkg := s.pres.pkg

	book, err := chartWorkbook(data)
	if err != nil {
		return nil, err
	}
	embed := pkg.NextName("ppt/embeddings/Microsoft_Excel_Sheet%d.xlsx")
	pkg.PutRaw(embed, book)

	chartPart := pkg.NextName("ppt/charts/chart%d.xml")
	space, err := chartSpace(kind, data, legend)
	if err != nil {
		return nil, err
	}
	pkg.PutXML(chartPart, newDocument(space))
	crels, err := pkg.Rels(chartPart)
	if err != nil {
		return nil, err
	}
	ext := add(space, "c:externalData", "r:id", crels.Add(RelPackage, embed))
	add(ext, "c:autoUpdate", "val", "0")

	ct, err := pkg.ContentTypes()
	if err != nil {
		return nil, err
	}
	ct.Override(chartPart, TypeChartPart)
	ct.Default("xlsx", TypeWorkbook)

	rid := s.rels.Add(RelChart, chartPart)
	id := s.NextShapeID()
	sh, gd := newGraphicFrame(id, "Chart "+strconv.Itoa(id-1), uriChart, off, size)
	add(gd, "c:chart", "xmlns:c", nsC, "xmlns:r", nsR, "r:id", rid)
	s.Append(sh)
	return sh, nil
}

// chartWorkbook lays out data the way PowerPoint does: categories in column
// A from row 2, one series per column from B with its name in row 1.
func chartWorkbook(data ChartData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, cat := range data.Categories {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(chartSheet, cell, cat); err != nil {
			return nil, fmt.Errorf("chart workbook: %w", err)
		}
	}
	for si, ser := range data.Series {
		cell, err := excelize.CoordinatesToCellName(si+2, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(chartSheet, cell, ser.Name); err != nil {
			return nil, fmt.Errorf("chart workbook: %w", err)
		}
		for vi, v := range ser.Values {
			cell, err := excelize.CoordinatesToCellName(si+2, vi+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(chartSheet, cell, v); err != nil {
				return nil, fmt.Errorf("chart workbook: %w", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("chart workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetRange(col, fromRow, toRow int) (string, error) {
	from, err := excelize.CoordinatesToCellName(col, fromRow, true)
	if err != nil {
		return "", err
	}
	if toRow <= fromRow {
		return chartSheet + "!" + from, nil
	}
	to, err := excelize.CoordinatesToCellName(col, toRow, true)
	if err != nil {
		return "", err
	}
	return chartSheet + "!" + from + ":" + to, nil
}

const (
	catAxisID = "-2068027336"
	valAxisID = "-2113994440"
)

func chartSpace(kind ChartKind, data ChartData, legend bool) (*etree.Element, error) {
	space := el("c:chartSpace", "xmlns:c", nsC, "xmlns:a", nsA, "xmlns:r", nsR)
	add(space, "c:date1904", "val", "0")
	add(space, "c:roundedCorners", "val", "0")
	chart := add(space, "c:chart")
	add(chart, "c:autoTitleDeleted", "val", "0")
	plot := add(chart, "c:plotArea")
	add(plot, "c:layout")

	var group *etree.Element
	switch kind {
	case ChartLine:
		group = add(plot, "c:lineChart")
		add(group, "c:grouping", "val", "standard")
		add(group, "c:varyColors", "val", "0")
	case ChartPie:
		group = add(plot, "c:pieChart")
		add(group, "c:varyColors", "val", "1")
	default:
		group = add(plot, "c:barChart")
		dir := "col"
		if kind == ChartBar {
			dir = "bar"
		}
		add(group, "c:barDir", "val", dir)
		add(group, "c:grouping", "val", "clustered")
		add(group, "c:varyColors", "val", "0")
	}
	for i, ser := range data.Series {
		if err := addSeries(group, kind, i, ser, data.Categories); err != nil {
			return nil, err
		}
	}
	switch kind {
	case ChartPie:
		add(group, "c:firstSliceAng", "val", "0")
	case ChartLine:
		add(group, "c:marker", "val", "1")
		addAxes(group, plot, "b", "l")
	case ChartBar:
		add(group, "c:gapWidth", "val", "150")
		addAxes(group, plot, "l", "b")
	default:
		add(group, "c:gapWidth", "val", "150")
		addAxes(group, plot, "b", "l")
	}
	if legend {
		lg := add(chart, "c:legend")
		add(lg, "c:legendPos", "val", "r")
		add(lg, "c:overlay", "val", "0")
	}
	add(chart, "c:plotVisOnly", "val", "1")
	add(chart, "c:dispBlanksAs", "val", "gap")
	return space, nil
}

func addSeries(group *etree.Element, kind ChartKind, i int, ser Series, cats []string) error {
	s := add(group, "c:ser")
	add(s, "c:idx", "val", strconv.Itoa(i))
	add(s, "c:order", "val", strconv.Itoa(i))

	nameRef, err := sheetRange(i+2, 1, 1)
	if err != nil {
		return err
	}
	strRef := add(add(s, "c:tx"), "c:strRef")
	add(strRef, "c:f").SetText(nameRef)
	strCache(add(strRef, "c:strCache"), []string{ser.Name})

	switch kind {
	case ChartColumn, ChartBar:
		add(s, "c:invertIfNegative", "val", "0")
	case ChartLine:
		add(add(s, "c:marker"), "c:symbol", "val", "none")
	}

	if len(cats) > 0 {
		catRef, err := sheetRange(1, 2, len(cats)+1)
		if err != nil {
			return err
		}
		ref := add(add(s, "c:cat"), "c:strRef")
		add(ref, "c:f").SetText(catRef)
		strCache(add(ref, "c:strCache"), cats)
	}

	valRef, err := sheetRange(i+2, 2, len(ser.Values)+1)
	if err != nil {
		return err
	}
	numRef := add(add(s, "c:val"), "c:numRef")
	add(numRef, "c:f").SetText(valRef)
	cache := add(numRef, "c:numCache")
	add(cache, "c:formatCode").SetText("General")
	add(cache, "c:ptCount", "val", strconv.Itoa(len(ser.Values)))
	for j, v := range ser.Values {
		add(add(cache, "c:pt", "idx", strconv.Itoa(j)), "c:v").SetText(strconv.FormatFloat(v, 'f', -1, 64))
	}

	if kind == ChartLine {
		add(s, "c:smooth", "val", "0")
	}
	return nil
}

func strCache(cache *etree.Element, values []string) {
	add(cache, "c:ptCount", "val", strconv.Itoa(len(values)))
	for j, v := range values {
		add(add(cache, "c:pt", "idx", strconv.Itoa(j)), "c:v").SetText(v)
	}
}

func addAxes(group, plot *etree.Element, catPos, valPos string) {
	add(group, "c:axId", "val", catAxisID)
	add(group, "c:axId", "val", valAxisID)

	cat := add(plot, "c:catAx")
	add(cat, "c:axId", "val", catAxisID)
	add(add(cat, "c:scaling"), "c:orientation", "val", "minMax")
	add(cat, "c:delete", "val", "0")
	add(cat, "c:axPos", "val", catPos)
	add(cat, "c:majorTickMark", "val", "out")
	add(cat, "c:minorTickMark", "val", "none")
	add(cat, "c:tickLblPos", "val", "nextTo")
	add(cat, "c:crossAx", "val", valAxisID)
	add(cat, "c:crosses", "val", "autoZero")
	add(cat, "c:auto", "val", "1")
	add(cat, "c:lblAlgn", "val", "ctr")
	add(cat, "c:lblOffset", "val", "100")
	add(cat, "c:noMultiLvlLbl", "val", "0")

	val := add(plot, "c:valAx")
	add(val, "c:axId", "val", valAxisID)
	add(add(val, "c:scaling"), "c:orientation", "val", "minMax")
	add(val, "c:delete", "val", "0")
	add(val, "c:axPos", "val", valPos)
	add(val, "c:majorGridlines")
	add(val, "c:numFmt", "formatCode", "General", "sourceLinked", "1")
	add(val, "c:majorTickMark", "val", "out")
	add(val, "c:minorTickMark", "val", "none")
	add(val, "c:tickLblPos", "val", "nextTo")
	add(val, "c:crossAx", "val", catAxisID)
	add(val, "c:crosses", "val", "autoZero")
	add(val, "c:crossBetween", "val", "between")
}

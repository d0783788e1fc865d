package deck

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Table is a view over an a:tbl element.
type Table struct {
	tbl *etree.Element
}

// Table returns the table of a table graphic frame.
func (s *Shape) Table() (*Table, bool) {
	if !s.HasTable() {
		return nil, false
	}
	tbl := child(s.graphicData(), "tbl")
	if tbl == nil {
		return nil, false
	}
	return &Table{tbl: tbl}, true
}

// Rows is the number of a:tr rows.
func (t *Table) Rows() int { return len(children(t.tbl, "tr")) }

// Cols is the number of grid columns.
func (t *Table) Cols() int { return len(children(child(t.tbl, "tblGrid"), "gridCol")) }

func (t *Table) cell(row, col int) (*etree.Element, error) {
	rows := children(t.tbl, "tr")
	if err := checkIndex("row", row, len(rows)); err != nil {
		return nil, err
	}
	if err := checkIndex("column", col, t.Cols()); err != nil {
		return nil, err
	}
	cells := children(rows[row], "tc")
	if col >= len(cells) {
		return nil, fmt.Errorf("row %d has %d cells: %w", row, len(cells), ErrNotFound)
	}
	return cells[col], nil
}

// CellText returns the text of a cell.
func (t *Table) CellText(row, col int) (string, error) {
	tc, err := t.cell(row, col)
	if err != nil {
		return "", err
	}
	return bodyText(child(tc, "txBody")), nil
}

// SetCellText replaces the text of a cell.
func (t *Table) SetCellText(row, col int, text string) error {
	tc, err := t.cell(row, col)
	if err != nil {
		return err
	}
	body := child(tc, "txBody")
	if body == nil {
		body = el("a:txBody")
		add(body, "a:bodyPr")
		add(body, "a:lstStyle")
		tc.InsertChildAt(0, body)
	}
	setBodyText(body, text, nil, nil)
	return nil
}

// Data returns every cell's text, row by row.
func (t *Table) Data() [][]string {
	var out [][]string
	for r, tr := range children(t.tbl, "tr") {
		var row []string
		for c := range children(tr, "tc") {
			text, _ := t.CellText(r, c)
			row = append(row, text)
		}
		out = append(out, row)
	}
	return out
}

// medium style 2, accent 1: the default table style of new PowerPoint tables.
const defaultTableStyle = "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"

// AddTable appends an empty rows x cols table with evenly split column
// widths and row heights.
func (s *Slide) AddTable(rows, cols int, off Point, size Size) (*Shape, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("table needs at least one row and one column, got %dx%d", rows, cols)
	}
	id := s.NextShapeID()
	sh, gd := newGraphicFrame(id, "Table "+strconv.Itoa(id-1), uriTable, off, size)
	tbl := add(gd, "a:tbl")
	tblPr := add(tbl, "a:tblPr", "firstRow", "1", "bandRow", "1")
	add(tblPr, "a:tableStyleId").SetText(defaultTableStyle)
	grid := add(tbl, "a:tblGrid")
	for c := 0; c < cols; c++ {
		add(grid, "a:gridCol", "w", strconv.FormatInt(split(size.Width, cols, c), 10))
	}
	for r := 0; r < rows; r++ {
		tr := add(tbl, "a:tr", "h", strconv.FormatInt(split(size.Height, rows, r), 10))
		for c := 0; c < cols; c++ {
			tc := add(tr, "a:tc")
			body := add(tc, "a:txBody")
			add(body, "a:bodyPr")
			add(body, "a:lstStyle")
			add(body, "a:p")
			add(tc, "a:tcPr")
		}
	}
	s.Append(sh)
	return sh, nil
}

// split divides total into n parts; the last part absorbs the remainder.
func split(total int64, n, i int) int64 {
	part := total / int64(n)
	if i == n-1 {
		return total - part*int64(n-1)
	}
	return part
}

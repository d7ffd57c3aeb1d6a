package table

import "fmt"

// CellContent is what a cell draws.
type CellContent interface {
	cellContent()
}

// TextContent is plain, possibly multi-line text.
type TextContent struct {
	Text string
}

func (TextContent) cellContent() {}

// FieldContent is a small caption above a value, the layout of every
// form field on a ficha.
type FieldContent struct {
	Label string
	Value string
}

func (FieldContent) cellContent() {}

// Cell is a single cell in a row.
type Cell struct {
	content CellContent
	colspan int
	style   *CellStyle
}

// SetColspan sets the number of columns this cell spans.
func (c *Cell) SetColspan(n int) *Cell {
	if n > 0 {
		c.colspan = n
	}
	return c
}

// SetStyle overrides table and row styles for this cell.
func (c *Cell) SetStyle(s CellStyle) *Cell {
	c.style = &s
	return c
}

// SetAlign sets the horizontal alignment for this cell.
func (c *Cell) SetAlign(align string) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Align = align
	return c
}

// SetFillColor sets the background color for this cell.
func (c *Cell) SetFillColor(r, g, b int) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.FillColor = &RGBColor{r, g, b}
	return c
}

// Row is a single row of cells.
type Row struct {
	cells    []*Cell
	style    *CellStyle
	isHeader bool
	minH     float64
}

func (r *Row) add(content CellContent) *Cell {
	c := &Cell{content: content, colspan: 1}
	r.cells = append(r.cells, c)
	return c
}

// AddCell adds a text cell.
func (r *Row) AddCell(text string) *Cell {
	return r.add(TextContent{Text: text})
}

// AddCellf adds a formatted text cell.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// AddField adds a labelled value cell spanning span columns.
func (r *Row) AddField(label, value string, span int) *Cell {
	return r.add(FieldContent{Label: label, Value: value}).SetColspan(span)
}

// SetStyle sets the style for all cells in this row.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

// SetMinHeight sets the minimum height for this row.
func (r *Row) SetMinHeight(h float64) *Row {
	r.minH = h
	return r
}

// Span is the number of columns the row's cells occupy.
func (r *Row) Span() int {
	n := 0
	for _, c := range r.cells {
		n += c.colspan
	}
	return n
}

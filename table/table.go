package table

import (
	"github.com/go-pdf/fpdf"
)

// DefaultFont is used for cell values when the table style sets none.
var DefaultFont = FontSpec{Family: "Helvetica", Size: 9}

// Table builds a grid of rows and draws it at the current cursor.
type Table struct {
	pdf        *fpdf.Fpdf
	widths     []float64 // fixed widths; 0 entries share the remaining space
	grid       int
	rows       []*Row
	style      TableStyle
	x, y       float64
	tableWidth float64
	tr         func(string) string
}

// New creates a Table drawing on pdf.
func New(pdf *fpdf.Fpdf) *Table {
	return &Table{
		pdf:   pdf,
		style: TableStyle{CellPadding: UniformPadding(1)},
		tr:    func(s string) string { return s },
	}
}

// SetColumnWidths sets fixed column widths. A width of 0 shares whatever
// space the fixed columns leave.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.widths = widths
	t.grid = 0
	return t
}

// SetGrid divides the table width into n equal columns.
func (t *Table) SetGrid(n int) *Table {
	t.grid = n
	t.widths = nil
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// SetPosition sets the top-left corner. Zero values keep the cursor.
func (t *Table) SetPosition(x, y float64) *Table {
	t.x = x
	t.y = y
	return t
}

// SetWidth sets the total table width. The default is the page width minus
// margins.
func (t *Table) SetWidth(w float64) *Table {
	t.tableWidth = w
	return t
}

// SetTranslator converts UTF-8 cell text to the encoding of the core fonts,
// typically pdf.UnicodeTranslatorFromDescriptor("").
func (t *Table) SetTranslator(tr func(string) string) *Table {
	if tr != nil {
		t.tr = tr
	}
	return t
}

// AddRow appends a body row.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// AddHeaderRow inserts a header row after any existing header rows.
func (t *Table) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	idx := 0
	for idx < len(t.rows) && t.rows[idx].isHeader {
		idx++
	}
	t.rows = append(t.rows, nil)
	copy(t.rows[idx+1:], t.rows[idx:])
	t.rows[idx] = r
	return r
}

// Height is the total height the rows will take, ignoring page breaks.
func (t *Table) Height() float64 {
	widths := t.columnWidths()
	h := 0.0
	for _, r := range t.rows {
		h += t.rowHeight(r, widths)
	}
	return h
}

// Render draws the table and leaves the cursor below it.
func (t *Table) Render() error {
	if t.pdf.Err() {
		return t.pdf.Error()
	}
	widths := t.columnWidths()
	if len(widths) == 0 {
		return nil
	}

	startX := t.x
	if startX == 0 {
		startX = t.pdf.GetX()
	}
	if t.y != 0 {
		t.pdf.SetY(t.y)
	}

	var headers, body []*Row
	for _, r := range t.rows {
		if r.isHeader {
			headers = append(headers, r)
		} else {
			body = append(body, r)
		}
	}

	for _, r := range headers {
		t.renderRow(r, widths, startX, -1)
	}
	_, pageH := t.pdf.GetPageSize()
	_, bottom := t.pdf.GetAutoPageBreak()
	for i, r := range body {
		if t.pdf.GetY()+t.rowHeight(r, widths) > pageH-bottom {
			t.pdf.AddPage()
			t.pdf.SetX(startX)
			for _, hr := range headers {
				t.renderRow(hr, widths, startX, -1)
			}
		}
		t.renderRow(r, widths, startX, i)
	}
	return t.pdf.Error()
}

func (t *Table) totalWidth() float64 {
	if t.tableWidth > 0 {
		return t.tableWidth
	}
	pageW, _ := t.pdf.GetPageSize()
	l, _, r, _ := t.pdf.GetMargins()
	return pageW - l - r
}

func (t *Table) columnWidths() []float64 {
	total := t.totalWidth()
	if t.grid > 0 {
		widths := make([]float64, t.grid)
		for i := range widths {
			widths[i] = total / float64(t.grid)
		}
		return widths
	}

	defs := t.widths
	if len(defs) == 0 {
		n := 0
		for _, r := range t.rows {
			if s := r.Span(); s > n {
				n = s
			}
		}
		defs = make([]float64, n)
	}

	widths := make([]float64, len(defs))
	fixed, auto := 0.0, 0
	for i, w := range defs {
		if w > 0 {
			widths[i] = w
			fixed += w
		} else {
			auto++
		}
	}
	if auto > 0 {
		share := (total - fixed) / float64(auto)
		if share < 0 {
			share = 0
		}
		for i, w := range defs {
			if w <= 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

// spanWidth is the width of a cell starting at column col.
func spanWidth(widths []float64, col, span int) float64 {
	w := 0.0
	for j := col; j < col+span && j < len(widths); j++ {
		w += widths[j]
	}
	return w
}

func (t *Table) lineHeight(size float64) float64 {
	k := t.style.LineHeight
	if k <= 0 {
		k = 0.5
	}
	return size * k
}

func (t *Table) valueFont(style CellStyle) FontSpec {
	if style.Font != nil {
		return *style.Font
	}
	if t.style.CellFont != nil {
		return *t.style.CellFont
	}
	return DefaultFont
}

func (t *Table) label() LabelStyle {
	if t.style.Label != nil {
		return *t.style.Label
	}
	return DefaultLabel
}

// textLines wraps s at width w in font f.
func (t *Table) textLines(s string, f FontSpec, w float64) int {
	if s == "" {
		return 1
	}
	t.pdf.SetFont(f.Family, f.Style, f.Size)
	// SplitLines works on the translated single-byte text.
	if n := len(t.pdf.SplitLines([]byte(t.tr(s)), w)); n > 0 {
		return n
	}
	return 1
}

func (t *Table) rowHeight(r *Row, widths []float64) float64 {
	pad := t.style.CellPadding
	maxH := r.minH
	col := 0
	for _, cell := range r.cells {
		if col >= len(widths) {
			break
		}
		w := spanWidth(widths, col, cell.colspan) - pad.Left - pad.Right
		if w < 1 {
			w = 1
		}
		font := t.valueFont(t.resolveCellStyle(cell, r, 0))

		var h float64
		switch c := cell.content.(type) {
		case TextContent:
			h = float64(t.textLines(c.Text, font, w)) * t.lineHeight(font.Size)
		case FieldContent:
			lbl := t.label()
			h = t.lineHeight(lbl.Font.Size) + float64(t.textLines(c.Value, font, w))*t.lineHeight(font.Size)
		}
		if h += pad.Top + pad.Bottom; h > maxH {
			maxH = h
		}
		col += cell.colspan
	}
	return maxH
}

func (t *Table) renderRow(r *Row, widths []float64, startX float64, bodyIdx int) {
	rowH := t.rowHeight(r, widths)
	pad := t.style.CellPadding
	y := t.pdf.GetY()
	x := startX

	if b := t.style.Border; b != nil {
		t.pdf.SetDrawColor(b.Color.R, b.Color.G, b.Color.B)
		if b.Width > 0 {
			t.pdf.SetLineWidth(b.Width)
		}
	}

	col := 0
	for _, cell := range r.cells {
		if col >= len(widths) {
			break
		}
		cellW := spanWidth(widths, col, cell.colspan)
		style := t.resolveCellStyle(cell, r, bodyIdx)

		if style.FillColor != nil {
			t.pdf.SetFillColor(style.FillColor.R, style.FillColor.G, style.FillColor.B)
			t.pdf.Rect(x, y, cellW, rowH, "F")
		}
		t.pdf.Rect(x, y, cellW, rowH, "D")

		if style.TextColor != nil {
			t.pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
		} else {
			t.pdf.SetTextColor(0, 0, 0)
		}
		align := style.Align
		if align == "" {
			align = "L"
		}
		font := t.valueFont(style)
		contentW := cellW - pad.Left - pad.Right
		cy := y + pad.Top

		switch c := cell.content.(type) {
		case TextContent:
			t.pdf.SetFont(font.Family, font.Style, font.Size)
			t.pdf.SetXY(x+pad.Left, cy)
			t.pdf.MultiCell(contentW, t.lineHeight(font.Size), t.tr(c.Text), "", align, false)
		case FieldContent:
			lbl := t.label()
			t.pdf.SetFont(lbl.Font.Family, lbl.Font.Style, lbl.Font.Size)
			t.pdf.SetTextColor(lbl.Color.R, lbl.Color.G, lbl.Color.B)
			t.pdf.SetXY(x+pad.Left, cy)
			t.pdf.CellFormat(contentW, t.lineHeight(lbl.Font.Size), t.tr(c.Label), "", 0, "L", false, 0, "")
			cy += t.lineHeight(lbl.Font.Size)

			if style.TextColor != nil {
				t.pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
			} else {
				t.pdf.SetTextColor(0, 0, 0)
			}
			t.pdf.SetFont(font.Family, font.Style, font.Size)
			t.pdf.SetXY(x+pad.Left, cy)
			t.pdf.MultiCell(contentW, t.lineHeight(font.Size), t.tr(c.Value), "", align, false)
		}

		x += cellW
		col += cell.colspan
	}

	t.pdf.SetDrawColor(0, 0, 0)
	t.pdf.SetFillColor(255, 255, 255)
	t.pdf.SetTextColor(0, 0, 0)
	t.pdf.SetXY(startX, y+rowH)
}

// resolveCellStyle merges header, alternate row, row and cell styles, in
// increasing priority.
func (t *Table) resolveCellStyle(cell *Cell, row *Row, bodyIdx int) CellStyle {
	var result CellStyle
	if t.style.CellFont != nil {
		result.Font = t.style.CellFont
	}
	if row.isHeader && t.style.HeaderStyle != nil {
		mergeStyle(&result, t.style.HeaderStyle)
	}
	if !row.isHeader && t.style.AlternateRows != nil && bodyIdx >= 0 {
		mergeStyle(&result, &t.style.AlternateRows[bodyIdx%2])
	}
	if row.style != nil {
		mergeStyle(&result, row.style)
	}
	if cell.style != nil {
		mergeStyle(&result, cell.style)
	}
	return result
}

func mergeStyle(dst, src *CellStyle) {
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != "" {
		dst.Align = src.Align
	}
}

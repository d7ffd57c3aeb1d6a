package doctpl

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/barcode"
	"github.com/go-pdf/fpdf/contrib/gofpdi"

	"github.com/lvillar/carteira/table"
)

// GridColumns is the column count of grid elements.
const GridColumns = 12

var defaultFont = Font{Family: "Helvetica", Style: "", Size: 10}

// Render parses a JSON template and writes the resulting PDF to w.
func Render(w io.Writer, jsonTemplate []byte) error {
	var doc Document
	if err := json.Unmarshal(jsonTemplate, &doc); err != nil {
		return fmt.Errorf("doctpl: parsing template: %w", err)
	}
	return RenderDocument(w, &doc)
}

// renderer carries the state shared by the element renderers of one
// document.
type renderer struct {
	pdf    *fpdf.Fpdf
	font   Font
	tr     func(string) string
	ox, oy float64 // origin of absolute coordinates
	images map[string]string
}

// RenderDocument renders doc to a PDF written to w.
func RenderDocument(w io.Writer, doc *Document) error {
	pageSize := doc.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	pdf := fpdf.New("P", "mm", pageSize, "")

	if doc.Margin != nil {
		pdf.SetMargins(doc.Margin.Left, doc.Margin.Top, doc.Margin.Right)
		pdf.SetAutoPageBreak(true, doc.Margin.Bottom)
	} else {
		pdf.SetMargins(15, 15, 15)
		pdf.SetAutoPageBreak(true, 15)
	}

	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	if doc.Author != "" {
		pdf.SetAuthor(doc.Author, true)
	}
	if doc.Subject != "" {
		pdf.SetSubject(doc.Subject, true)
	}
	if doc.Creator != "" {
		pdf.SetCreator(doc.Creator, true)
	}

	r := &renderer{
		pdf:    pdf,
		font:   defaultFont,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: make(map[string]string),
	}
	if doc.Font != nil {
		if doc.Font.Family != "" {
			r.font.Family = doc.Font.Family
		}
		if doc.Font.Size > 0 {
			r.font.Size = doc.Font.Size
		}
		r.font.Style = doc.Font.Style
	}

	if doc.Letterhead != "" || len(doc.LetterheadData) > 0 {
		draw, err := importLetterhead(pdf, doc)
		if err != nil {
			return fmt.Errorf("doctpl: letterhead: %w", err)
		}
		pdf.SetHeaderFuncMode(draw, true)
	}
	if doc.Footer != nil {
		ftr := *doc.Footer
		if strings.Contains(ftr.Text, "{pages}") {
			pdf.AliasNbPages("{nb}")
		}
		pdf.SetFooterFunc(func() { r.footer(ftr) })
	}

	for i, page := range doc.Pages {
		pdf.AddPage()
		r.beginPage(page)
		for _, elem := range page.Elements {
			if err := r.element(elem); err != nil {
				return fmt.Errorf("doctpl: page %d: %w", i+1, err)
			}
		}
	}
	if len(doc.Pages) == 0 {
		pdf.AddPage()
	}

	if pdf.Err() {
		return fmt.Errorf("doctpl: %w", pdf.Error())
	}
	return pdf.Output(w)
}

// importLetterhead imports the first page of the letterhead PDF and returns
// a function drawing it over the full page. The PDF importer panics on
// malformed input, so the import is guarded.
func importLetterhead(pdf *fpdf.Fpdf, doc *Document) (draw func(), err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("importing page: %v", p)
		}
	}()

	imp := gofpdi.NewImporter()
	var tpl int
	if len(doc.LetterheadData) > 0 {
		var rs io.ReadSeeker = bytes.NewReader(doc.LetterheadData)
		tpl = imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	} else {
		tpl = imp.ImportPage(pdf, doc.Letterhead, 1, "/MediaBox")
	}
	if pdf.Err() {
		return nil, pdf.Error()
	}
	return func() {
		w, h := pdf.GetPageSize()
		imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
	}, nil
}

func (r *renderer) beginPage(page Page) {
	r.ox, r.oy = 0, 0
	r.pdf.SetFont(r.font.Family, r.font.Style, r.font.Size)
	if page.Frame == nil || page.Frame.Width <= 0 || page.Frame.Height <= 0 {
		return
	}
	pageW, pageH := r.pdf.GetPageSize()
	r.ox = (pageW - page.Frame.Width) / 2
	r.oy = (pageH - page.Frame.Height) / 2
	if page.Frame.CutMarks {
		r.cutMarks(page.Frame.Width, page.Frame.Height)
	}
	r.pdf.SetXY(r.ox, r.oy)
}

// cutMarks draws short corner ticks just outside the frame.
func (r *renderer) cutMarks(w, h float64) {
	const gap, length = 2.0, 5.0
	r.pdf.SetDrawColor(150, 150, 150)
	r.pdf.SetLineWidth(0.1)
	for _, c := range [][2]float64{{r.ox, r.oy}, {r.ox + w, r.oy}, {r.ox, r.oy + h}, {r.ox + w, r.oy + h}} {
		dx, dy := -1.0, -1.0
		if c[0] > r.ox {
			dx = 1
		}
		if c[1] > r.oy {
			dy = 1
		}
		r.pdf.Line(c[0]+dx*gap, c[1], c[0]+dx*(gap+length), c[1])
		r.pdf.Line(c[0], c[1]+dy*gap, c[0], c[1]+dy*(gap+length))
	}
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(0.2)
}

func (r *renderer) element(elem Element) error {
	switch elem.Type {
	case TypeHeading:
		r.heading(elem)
	case TypeParagraph:
		r.paragraph(elem)
	case TypeText:
		r.text(elem)
	case TypeField:
		return r.field(elem)
	case TypeGrid:
		return r.grid(elem)
	case TypeTable:
		return r.table(elem)
	case TypeImage:
		return r.image(elem)
	case TypeQR:
		return r.qr(elem)
	case TypeLine:
		r.line(elem)
	case TypeRect:
		r.rect(elem)
	case TypeCheckbox:
		r.checkbox(elem)
	case TypeSpacer:
		h := elem.SpacerHeight
		if h == 0 {
			h = 10
		}
		r.pdf.Ln(h)
	case TypeHR:
		r.hr(elem)
	case TypeList:
		r.list(elem)
	default:
		return fmt.Errorf("unknown element type %q", elem.Type)
	}
	return nil
}

// apply sets elem's font over base and its text color, returning the
// resulting font.
func (r *renderer) apply(elem Element, base Font) Font {
	f := base
	if elem.Font != nil {
		if elem.Font.Family != "" {
			f.Family = elem.Font.Family
		}
		if elem.Font.Style != "" {
			f.Style = elem.Font.Style
		}
		if elem.Font.Size > 0 {
			f.Size = elem.Font.Size
		}
	}
	r.pdf.SetFont(f.Family, f.Style, f.Size)
	if elem.Color != nil {
		r.pdf.SetTextColor(elem.Color.R, elem.Color.G, elem.Color.B)
	}
	return f
}

func (r *renderer) reset() {
	r.pdf.SetFont(r.font.Family, r.font.Style, r.font.Size)
	r.pdf.SetTextColor(0, 0, 0)
}

func align(s string) string {
	if s == "" {
		return "L"
	}
	return strings.ToUpper(s)
}

func (r *renderer) contentWidth() float64 {
	pageW, _ := r.pdf.GetPageSize()
	lm, _, rm, _ := r.pdf.GetMargins()
	return pageW - lm - rm
}

func (r *renderer) heading(elem Element) {
	level := min(max(elem.Level, 1), 6)
	sizes := []float64{18, 15, 13, 12, 11, 10}
	f := r.apply(elem, Font{Family: r.font.Family, Style: "B", Size: sizes[level-1]})

	r.pdf.Ln(f.Size * 0.3)
	r.pdf.MultiCell(r.contentWidth(), f.Size*0.5, r.tr(elem.Text), "", align(elem.Align), false)
	r.pdf.Ln(f.Size * 0.2)
	r.reset()
}

func (r *renderer) paragraph(elem Element) {
	f := r.apply(elem, r.font)
	r.pdf.MultiCell(r.contentWidth(), f.Size*0.5, r.tr(elem.Text), "", align(elem.Align), false)
	r.pdf.Ln(f.Size * 0.3)
	r.reset()
}

// text draws a block at an absolute position; without a position it flows
// like a paragraph without trailing space.
func (r *renderer) text(elem Element) {
	f := r.apply(elem, r.font)
	w := elem.Width
	if elem.X != 0 || elem.Y != 0 {
		r.pdf.SetXY(r.ox+elem.X, r.oy+elem.Y)
	}
	if w <= 0 {
		w = r.contentWidth()
	}
	r.pdf.MultiCell(w, f.Size*0.45, r.tr(elem.Text), "", align(elem.Align), false)
	r.reset()
}

// field draws a small caption with the value below it.
func (r *renderer) field(elem Element) error {
	if elem.Width <= 0 {
		return fmt.Errorf("field %q requires a width", elem.Label)
	}
	x, y := r.ox+elem.X, r.oy+elem.Y
	const labelSize = 5.5

	r.pdf.SetFont(r.font.Family, "B", labelSize)
	r.pdf.SetTextColor(100, 100, 100)
	r.pdf.SetXY(x, y)
	r.pdf.CellFormat(elem.Width, labelSize*0.45, r.tr(elem.Label), "", 0, align(elem.Align), false, 0, "")
	r.pdf.SetTextColor(0, 0, 0)

	f := r.apply(elem, Font{Family: r.font.Family, Size: 8})
	r.pdf.SetXY(x, y+labelSize*0.45)
	r.pdf.MultiCell(elem.Width, f.Size*0.45, r.tr(elem.Text), "", align(elem.Align), false)
	r.reset()
	return nil
}

// grid lays out labelled fields in rows of GridColumns spans, preceded by
// the section title when Text is set.
func (r *renderer) grid(elem Element) error {
	if elem.Text != "" {
		r.sectionTitle(elem.Text)
	}
	t := table.New(r.pdf).SetGrid(GridColumns).SetTranslator(r.tr)
	if elem.Width > 0 {
		t.SetWidth(elem.Width)
	}
	t.SetStyle(table.TableStyle{
		CellPadding: table.Padding{Top: 0.8, Right: 1.2, Bottom: 0.8, Left: 1.2},
		Border:      &table.BorderStyle{Width: 0.2, Color: table.RGBColor{R: 160, G: 160, B: 160}},
		CellFont:    &table.FontSpec{Family: r.font.Family, Size: 8.5},
		LineHeight:  0.45,
	})

	row, used := t.AddRow(), 0
	for _, f := range elem.Fields {
		span := f.Span
		if span <= 0 || span > GridColumns {
			return fmt.Errorf("grid field %q has span %d", f.Label, f.Span)
		}
		if used+span > GridColumns {
			row, used = t.AddRow(), 0
		}
		row.AddField(f.Label, f.Value, span)
		used += span
	}
	err := t.Render()
	r.pdf.Ln(2)
	r.reset()
	return err
}

func (r *renderer) sectionTitle(title string) {
	r.pdf.SetFont(r.font.Family, "B", 8.5)
	r.pdf.SetFillColor(30, 58, 95)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.CellFormat(r.contentWidth(), 5, r.tr(strings.ToUpper(title)), "", 1, "L", true, 0, "")
	r.pdf.SetFillColor(255, 255, 255)
	r.reset()
}

func (r *renderer) table(elem Element) error {
	if elem.Text != "" {
		r.sectionTitle(elem.Text)
	}
	t := table.New(r.pdf).SetTranslator(r.tr)
	if len(elem.Columns) > 0 {
		widths := make([]float64, len(elem.Columns))
		hr := t.AddHeaderRow()
		for i, c := range elem.Columns {
			widths[i] = c.Width
			hr.AddCell(c.Header).SetAlign(c.Align)
		}
		t.SetColumnWidths(widths...)
	}
	t.SetStyle(table.TableStyle{
		CellPadding: table.UniformPadding(1.2),
		Border:      &table.BorderStyle{Width: 0.2, Color: table.RGBColor{R: 160, G: 160, B: 160}},
		CellFont:    &table.FontSpec{Family: r.font.Family, Size: 8.5},
		LineHeight:  0.45,
		HeaderStyle: &table.CellStyle{
			FillColor: &table.RGBColor{R: 232, G: 236, B: 242},
			Font:      &table.FontSpec{Family: r.font.Family, Style: "B", Size: 8},
		},
	})
	for _, row := range elem.Rows {
		tr := t.AddRow().SetMinHeight(6)
		for i, cell := range row {
			c := tr.AddCell(cell)
			if i < len(elem.Columns) && elem.Columns[i].Align != "" {
				c.SetAlign(elem.Columns[i].Align)
			}
		}
	}
	err := t.Render()
	r.pdf.Ln(2)
	r.reset()
	return err
}

// registerImage returns the fpdf image name for src. Data URIs are decoded
// and registered once per document.
func (r *renderer) registerImage(src string) (string, string, error) {
	if len(src) < 5 || !strings.EqualFold(src[:5], "data:") {
		return src, "", nil
	}
	if name, ok := r.images[src]; ok {
		return name, "", nil
	}
	header, payload, ok := strings.Cut(src, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", "", fmt.Errorf("image data URI must be base64 encoded")
	}
	var typ string
	switch strings.TrimSuffix(strings.TrimPrefix(strings.ToLower(header), "data:"), ";base64") {
	case "image/jpeg", "image/jpg":
		typ = "JPG"
	case "image/png":
		typ = "PNG"
	case "image/gif":
		typ = "GIF"
	default:
		return "", "", fmt.Errorf("unsupported image data URI %q", header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", fmt.Errorf("image data URI: %w", err)
	}
	name := "img" + strconv.Itoa(len(r.images))
	r.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if r.pdf.Err() {
		return "", "", r.pdf.Error()
	}
	r.images[src] = name
	return name, typ, nil
}

func (r *renderer) image(elem Element) error {
	if elem.Src == "" {
		return fmt.Errorf("image element requires 'src' field")
	}
	name, typ, err := r.registerImage(elem.Src)
	if err != nil {
		return err
	}

	flow := elem.X == 0 && elem.Y == 0
	x, y := r.ox+elem.X, r.oy+elem.Y
	if flow {
		x, y = r.pdf.GetX(), r.pdf.GetY()
	}
	r.pdf.ImageOptions(name, x, y, elem.Width, elem.Height, false, fpdf.ImageOptions{ImageType: typ, ReadDpi: true}, 0, "")
	if flow && elem.Height > 0 {
		r.pdf.SetY(y + elem.Height + 2)
	}
	return nil
}

// qr draws Text as a square QR code of side Width.
func (r *renderer) qr(elem Element) error {
	if elem.Text == "" || elem.Width <= 0 {
		return fmt.Errorf("qr element requires 'text' and 'width'")
	}
	key := barcode.RegisterQR(r.pdf, elem.Text, qr.M, qr.Auto)
	if r.pdf.Err() {
		return r.pdf.Error()
	}
	barcode.Barcode(r.pdf, key, r.ox+elem.X, r.oy+elem.Y, elem.Width, elem.Width, false)
	return nil
}

func (r *renderer) line(elem Element) {
	if elem.LineWidth > 0 {
		r.pdf.SetLineWidth(elem.LineWidth)
	}
	if elem.Color != nil {
		r.pdf.SetDrawColor(elem.Color.R, elem.Color.G, elem.Color.B)
	}
	if elem.Dashed {
		r.pdf.SetDashPattern([]float64{1, 1}, 0)
	}
	r.pdf.Line(r.ox+elem.X1, r.oy+elem.Y1, r.ox+elem.X2, r.oy+elem.Y2)
	r.pdf.SetDashPattern([]float64{}, 0)
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(0.2)
}

func (r *renderer) rect(elem Element) {
	style := ""
	if elem.FillColor != nil {
		r.pdf.SetFillColor(elem.FillColor.R, elem.FillColor.G, elem.FillColor.B)
		style = "F"
	}
	if elem.Border || style == "" {
		style += "D"
	}
	if elem.Color != nil {
		r.pdf.SetDrawColor(elem.Color.R, elem.Color.G, elem.Color.B)
	}
	if elem.LineWidth > 0 {
		r.pdf.SetLineWidth(elem.LineWidth)
	}
	x, y := r.ox+elem.X, r.oy+elem.Y
	if elem.Radius > 0 {
		r.pdf.RoundedRect(x, y, elem.Width, elem.Height, elem.Radius, "1234", style)
	} else {
		r.pdf.Rect(x, y, elem.Width, elem.Height, style)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(0.2)
}

// checkbox draws a 3 mm box, crossed when checked, followed by its label.
// Without a position it flows at the cursor and moves to the next line.
func (r *renderer) checkbox(elem Element) {
	const size = 3.0
	flow := elem.X == 0 && elem.Y == 0
	x, y := r.ox+elem.X, r.oy+elem.Y
	if flow {
		x, y = r.pdf.GetX(), r.pdf.GetY()
	}
	r.pdf.Rect(x, y, size, size, "D")
	if elem.Checked {
		r.pdf.Line(x+0.5, y+0.5, x+size-0.5, y+size-0.5)
		r.pdf.Line(x+size-0.5, y+0.5, x+0.5, y+size-0.5)
	}

	f := r.apply(elem, Font{Family: r.font.Family, Size: 8})
	w := elem.Width
	if w <= 0 {
		lm, _, _, _ := r.pdf.GetMargins()
		w = r.contentWidth() - (x - lm) - size - 2
	}
	r.pdf.SetXY(x+size+2, y-0.3)
	r.pdf.MultiCell(w, f.Size*0.45, r.tr(elem.Label), "", "L", false)
	if flow {
		r.pdf.SetX(x)
		r.pdf.Ln(1.5)
	}
	r.reset()
}

func (r *renderer) hr(elem Element) {
	pageW, _ := r.pdf.GetPageSize()
	lm, _, rm, _ := r.pdf.GetMargins()

	r.pdf.Ln(3)
	y := r.pdf.GetY()
	lw := elem.LineWidth
	if lw == 0 {
		lw = 0.3
	}
	r.pdf.SetLineWidth(lw)
	if elem.Color != nil {
		r.pdf.SetDrawColor(elem.Color.R, elem.Color.G, elem.Color.B)
	} else {
		r.pdf.SetDrawColor(180, 180, 180)
	}
	r.pdf.Line(lm, y, pageW-rm, y)
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(0.2)
	r.pdf.Ln(3)
}

func (r *renderer) list(elem Element) {
	f := r.apply(elem, r.font)
	lm, _, _, _ := r.pdf.GetMargins()
	w := r.contentWidth() - 10

	for i, item := range elem.Items {
		prefix := "• "
		if elem.Ordered {
			prefix = strconv.Itoa(i+1) + ". "
		}
		r.pdf.SetX(lm + 5)
		r.pdf.MultiCell(w, f.Size*0.5, r.tr(prefix+item), "", "L", false)
		r.pdf.Ln(1)
	}
	r.pdf.Ln(2)
	r.reset()
}

func (r *renderer) footer(ftr Footer) {
	f := Font{Family: r.font.Family, Size: 7}
	if ftr.Font != nil {
		if ftr.Font.Family != "" {
			f.Family = ftr.Font.Family
		}
		f.Style = ftr.Font.Style
		if ftr.Font.Size > 0 {
			f.Size = ftr.Font.Size
		}
	}
	if ftr.Color != nil {
		r.pdf.SetTextColor(ftr.Color.R, ftr.Color.G, ftr.Color.B)
	} else {
		r.pdf.SetTextColor(110, 110, 110)
	}
	r.pdf.SetFont(f.Family, f.Style, f.Size)

	text := strings.ReplaceAll(ftr.Text, "{page}", strconv.Itoa(r.pdf.PageNo()))
	text = strings.ReplaceAll(text, "{pages}", "{nb}")
	a := ftr.Align
	if a == "" {
		a = "C"
	}

	r.pdf.SetY(-10)
	r.pdf.CellFormat(r.contentWidth(), 5, r.tr(text), "", 0, align(a), false, 0, "")
	r.reset()
}

// Package pdfexport lays member cards and fichas out as doctpl documents so
// the server can produce PDFs without a browser.
//
// Pages mirror the HTML builders: one 160x100 mm card sheet centred on each
// A4 page, and one ficha per member. Only embedded (data URI) images are
// drawn; resolve remote photos first.
package pdfexport

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/card"
	"github.com/lvillar/carteira/doctpl"
	"github.com/lvillar/carteira/ficha"
	"github.com/lvillar/carteira/format"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/qrpayload"
)

var (
	navy  = &doctpl.Color{R: 30, G: 58, B: 95}
	white = &doctpl.Color{R: 255, G: 255, B: 255}
	gray  = &doctpl.Color{R: 120, G: 120, B: 120}
	edge  = &doctpl.Color{R: 170, G: 170, B: 170}
)

// FichaOptions describes the ficha document as a whole.
type FichaOptions struct {
	Title       string
	GeneratedBy string
	DocumentID  string
	PrintedAt   time.Time
	Letterhead  []byte // optional PDF drawn under every page
}

// Write renders doc to w.
func Write(w io.Writer, doc *doctpl.Document) error {
	return doctpl.RenderDocument(w, doc)
}

// Carteiras returns a document with one card sheet per record.
func Carteiras(recs []*member.Record, settings member.Settings, issuedAt time.Time) (*doctpl.Document, error) {
	if len(recs) == 0 {
		return nil, carteira.NewError("pdfexport.Carteiras", carteira.ErrNoMembers)
	}
	doc := &doctpl.Document{
		Title:   "Carteiras de Membro",
		Author:  settings.NomeIgreja,
		Creator: "carteira",
	}
	for _, rec := range recs {
		doc.Pages = append(doc.Pages, carteiraPage(rec, settings, issuedAt))
	}
	return doc, nil
}

func carteiraPage(rec *member.Record, settings member.Settings, issuedAt time.Time) doctpl.Page {
	const back = card.FaceWidth

	els := []doctpl.Element{
		{Type: doctpl.TypeRect, Width: card.FaceWidth, Height: card.FaceHeight, Radius: 3, Border: true, Color: edge},
		{Type: doctpl.TypeRect, Width: card.FaceWidth, Height: 16, FillColor: navy},
	}
	if logo, ok := embedded(settings.LogoURL); ok {
		els = append(els, doctpl.Element{Type: doctpl.TypeImage, Src: logo, X: 3, Y: 3, Width: 10, Height: 10})
	}
	els = append(els,
		doctpl.Element{Type: doctpl.TypeText, X: 15, Y: 3.5, Width: 62, Align: "C", Text: settings.NomeIgreja,
			Font: &doctpl.Font{Style: "B", Size: 7}, Color: white},
		doctpl.Element{Type: doctpl.TypeText, X: 15, Y: 10, Width: 62, Align: "C", Text: "CARTEIRA DE MEMBRO",
			Font: &doctpl.Font{Size: 6}, Color: white},
		doctpl.Element{Type: doctpl.TypeRect, X: 4, Y: 21, Width: card.PhotoWidth, Height: card.PhotoHeight, Border: true, Color: edge},
	)
	if photo, ok := embedded(rec.Foto.String()); ok {
		els = append(els, doctpl.Element{Type: doctpl.TypeImage, Src: photo, X: 4, Y: 21, Width: card.PhotoWidth, Height: card.PhotoHeight})
	} else {
		els = append(els, doctpl.Element{Type: doctpl.TypeText, X: 4, Y: 43, Width: card.PhotoWidth, Align: "C",
			Text: card.NoPhotoText, Font: &doctpl.Font{Size: 7}, Color: gray})
	}
	els = append(els,
		field(42, 21, 35, "Nome", rec.Nome.String()),
		field(42, 33, 35, "Cargo", rec.Cargo.String()),
		field(42, 43, 35, "Matrícula", rec.Identifier()),
		field(42, 53, 35, "Expedida em", qrpayload.IssueDate(rec, issuedAt)),
		field(42, 63, 35, "Membro desde", format.DateShort(rec.MembroDesde.String())),
	)
	if settings.Sigla != "" {
		els = append(els, doctpl.Element{Type: doctpl.TypeText, X: 4, Y: 90, Width: 72, Align: "C",
			Text: settings.Sigla, Font: &doctpl.Font{Style: "B", Size: 8}, Color: navy})
	}

	els = append(els,
		doctpl.Element{Type: doctpl.TypeRect, X: back, Width: card.FaceWidth, Height: card.FaceHeight, Radius: 3, Border: true, Color: edge},
		field(back+4, 6, 40, "Filiação", strings.Join(nonEmpty(rec.NomePai.String(), rec.NomeMae.String()), "\n")),
		field(back+4, 24, 40, "Nascimento", format.DateShort(rec.DataNascimento.String())),
		field(back+4, 32, 40, "Estado civil", rec.EstadoCivil.String()),
		field(back+4, 42, 40, "CPF", format.CPF(rec.CPF.String())),
		field(back+4, 50, 40, "RG", rec.RG.String()),
		doctpl.Element{Type: doctpl.TypeQR, X: back + 46, Y: 6, Width: card.QRSize, Text: qrpayload.Build(rec, issuedAt)},
		doctpl.Element{Type: doctpl.TypeLine, X1: back + 10, Y1: 80, X2: back + 70, Y2: 80},
		doctpl.Element{Type: doctpl.TypeText, X: back + 10, Y: 81, Width: 60, Align: "C",
			Text: settings.NomeAssinante, Font: &doctpl.Font{Style: "B", Size: 7}},
		doctpl.Element{Type: doctpl.TypeText, X: back + 10, Y: 85, Width: 60, Align: "C",
			Text: settings.CargoAssinante, Font: &doctpl.Font{Size: 6}},
	)
	if addr := settings.AddressLine(); addr != "" {
		els = append(els, doctpl.Element{Type: doctpl.TypeText, X: back + 2, Y: 92, Width: 76, Align: "C",
			Text: addr, Font: &doctpl.Font{Size: 5.5}, Color: gray})
	}

	return doctpl.Page{
		Frame:    &doctpl.Frame{Width: card.SheetWidth, Height: card.SheetHeight, CutMarks: true},
		Elements: els,
	}
}

func field(x, y, w float64, label, value string) doctpl.Element {
	return doctpl.Element{Type: doctpl.TypeField, X: x, Y: y, Width: w, Label: label, Text: strings.TrimSpace(value)}
}

// Fichas returns a document with one registration form per record.
func Fichas(recs []*member.Record, opts FichaOptions) (*doctpl.Document, error) {
	if len(recs) == 0 {
		return nil, carteira.NewError("pdfexport.Fichas", carteira.ErrNoMembers)
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = ficha.DefaultTitle
	}
	doc := &doctpl.Document{
		Title:          title,
		Author:         opts.GeneratedBy,
		Creator:        "carteira",
		Margin:         &doctpl.Margin{Top: 12, Right: 12, Bottom: 14, Left: 12},
		Footer:         &doctpl.Footer{Text: footerText(opts)},
		LetterheadData: opts.Letterhead,
	}
	for _, rec := range recs {
		doc.Pages = append(doc.Pages, fichaPage(rec, title))
	}
	return doc, nil
}

func footerText(opts FichaOptions) string {
	var parts []string
	if opts.DocumentID != "" {
		parts = append(parts, "Documento "+opts.DocumentID)
	}
	if !opts.PrintedAt.IsZero() {
		parts = append(parts, "Impresso em "+opts.PrintedAt.Format("02/01/2006 15:04"))
	}
	if opts.GeneratedBy != "" {
		parts = append(parts, "por "+opts.GeneratedBy)
	}
	parts = append(parts, "Página {page} de {pages}")
	return strings.Join(parts, " · ")
}

func fichaPage(rec *member.Record, title string) doctpl.Page {
	const photoX, photoY = 171.0, 12.0

	els := []doctpl.Element{
		{Type: doctpl.TypeRect, X: photoX, Y: photoY, Width: 27, Height: 34, Border: true, Color: edge},
	}
	if photo, ok := embedded(rec.Foto.String()); ok {
		els = append(els, doctpl.Element{Type: doctpl.TypeImage, Src: photo, X: photoX, Y: photoY, Width: 27, Height: 34})
	} else {
		els = append(els, doctpl.Element{Type: doctpl.TypeText, X: photoX, Y: photoY + 15, Width: 27, Align: "C",
			Text: "FOTO 3x4", Font: &doctpl.Font{Size: 7}, Color: gray})
	}
	els = append(els, doctpl.Element{Type: doctpl.TypeText, X: 12, Y: 14, Width: 155, Text: title,
		Font: &doctpl.Font{Style: "B", Size: 14}, Color: navy})
	if id := rec.Identifier(); id != "" {
		els = append(els, doctpl.Element{Type: doctpl.TypeText, X: 12, Y: 23, Width: 155, Text: "Matrícula nº " + id,
			Font: &doctpl.Font{Size: 9}, Color: gray})
	} else {
		els = append(els, doctpl.Element{Type: doctpl.TypeText, X: 12, Y: 23, Width: 155, Text: " ", Font: &doctpl.Font{Size: 9}})
	}
	els = append(els, doctpl.Element{Type: doctpl.TypeSpacer, SpacerHeight: 18})

	for _, s := range ficha.Sections(rec) {
		grid := doctpl.Element{Type: doctpl.TypeGrid, Text: s.Title}
		for _, c := range s.Cells {
			grid.Fields = append(grid.Fields, doctpl.GridField{Label: c.Label, Value: c.Plain(), Span: c.Span})
		}
		els = append(els, grid)
	}

	els = append(els, childrenTable(rec))

	if notes := strings.TrimSpace(rec.Observacoes.String()); notes != "" {
		els = append(els, doctpl.Element{Type: doctpl.TypeGrid, Text: "Observações", Fields: []doctpl.GridField{
			{Label: "Observações", Value: strings.ReplaceAll(notes, "\r\n", "\n"), Span: doctpl.GridColumns},
		}})
	}

	els = append(els,
		doctpl.Element{Type: doctpl.TypeParagraph, Text: ficha.Declaration, Font: &doctpl.Font{Size: 8}},
		doctpl.Element{Type: doctpl.TypeCheckbox, Label: "Autorizo o tratamento dos meus dados pessoais", Checked: rec.AutorizacaoDados.Bool()},
		doctpl.Element{Type: doctpl.TypeCheckbox, Label: "Autorizo o uso da minha imagem", Checked: rec.AutorizacaoImagem.Bool()},
		doctpl.Element{Type: doctpl.TypeGrid, Fields: []doctpl.GridField{
			{Label: "Assinatura do membro", Value: " \n \n ", Span: 6},
			{Label: "Secretaria", Value: " \n \n ", Span: 6},
		}},
	)
	return doctpl.Page{Elements: els}
}

func childrenTable(rec *member.Record) doctpl.Element {
	title := "Filhos"
	if n := rec.DeclaredChildren(); n > 0 {
		title += " (quantidade declarada: " + strconv.Itoa(n) + ")"
	}
	el := doctpl.Element{
		Type: doctpl.TypeTable,
		Text: title,
		Columns: []doctpl.TableColumn{
			{Header: "#", Width: 8, Align: "C"},
			{Header: "Nome"},
			{Header: "CPF", Width: 38, Align: "C"},
			{Header: "Observação", Width: 55},
		},
	}
	for i, c := range rec.ChildRows() {
		el.Rows = append(el.Rows, []string{
			strconv.Itoa(i + 1),
			c.Nome.String(),
			format.CPF(c.CPF.String()),
			c.Observacao.String(),
		})
	}
	return el
}

// embedded accepts base64 JPEG, PNG and GIF data URIs, the image forms the
// renderer can draw without network access.
func embedded(ref string) (string, bool) {
	src, ok := member.PhotoSource(ref)
	if !ok {
		return "", false
	}
	lower := strings.ToLower(src)
	for _, prefix := range []string{"data:image/jpeg;base64,", "data:image/jpg;base64,", "data:image/png;base64,", "data:image/gif;base64,"} {
		if strings.HasPrefix(lower, prefix) {
			return src, true
		}
	}
	return "", false
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

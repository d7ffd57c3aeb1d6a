// Package ficha composes the printable A4 registration form reproducing a
// complete census record.
//
// Each section renders its own boundary (title bar plus grid), so omitted
// sections never shift the layout of the others.
package ficha

import (
	"strconv"
	"strings"

	"github.com/lvillar/carteira/format"
	"github.com/lvillar/carteira/member"
)

// Physical page dimensions in millimetres.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
)

// DefaultTitle heads the form when the caller supplies none.
const DefaultTitle = "FICHA DE CADASTRO DE MEMBRO"

// Declaration is printed above the consent checkboxes.
const Declaration = "Declaro, para os devidos fins, que as informações prestadas nesta ficha são verdadeiras " +
	"e autorizo a igreja a mantê-las em seu cadastro de membros, nos termos da Lei Geral de Proteção de Dados (LGPD)."

// Cell is one labeled value of a section grid. Span is the width in twelfths
// of the page. Text is the formatted plain value; flag cells render a
// checkbox instead.
type Cell struct {
	Label   string
	Text    string
	Span    int
	Flag    bool
	Checked bool
}

// Plain is the cell value as plain text.
func (c Cell) Plain() string {
	if c.Flag {
		return format.Flag(c.Checked)
	}
	return strings.TrimSpace(c.Text)
}

// HTML is the cell value as escaped markup.
func (c Cell) HTML() string {
	if c.Flag {
		return checkbox(c.Checked)
	}
	return format.Display(c.Text)
}

func text(label, value string, span int) Cell {
	return Cell{Label: label, Text: value, Span: span}
}

func flag(label string, checked bool, span int) Cell {
	return Cell{Label: label, Span: span, Flag: true, Checked: checked}
}

// Section is a titled grid of cells.
type Section struct {
	Class string
	Title string
	Cells []Cell
}

// Markup renders the registration form page for rec.
func Markup(rec *member.Record, title string) string {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.Grow(8192)

	b.WriteString(`<div class="ficha-page">`)
	writeHeader(&b, rec, title)
	for _, s := range Sections(rec) {
		writeSection(&b, s)
	}
	writeChildren(&b, rec)
	if notes := strings.TrimSpace(rec.Observacoes.String()); notes != "" {
		b.WriteString(`<section class="ficha-section ficha-notes">`)
		b.WriteString(`<h2 class="ficha-section-title">Observações</h2>`)
		b.WriteString(`<div class="ficha-notes-body">` + format.DisplayMultiline(notes) + `</div>`)
		b.WriteString(`</section>`)
	}
	writeDeclaration(&b, rec)
	b.WriteString(`</div>`)

	return b.String()
}

// Sections returns the grid sections of rec in print order. The marital
// section is included only when the member is married.
func Sections(rec *member.Record) []Section {
	sections := []Section{
		{Class: "ficha-registration", Title: "Dados de Cadastro", Cells: []Cell{
			text("Matrícula", rec.Identifier(), 3),
			text("Data de cadastro", format.DateShort(rec.DataCadastro.String()), 3),
			text("Congregação", rec.Congregacao.String(), 3),
			text("Setor", rec.Setor.String(), 3),
			text("Cargo", rec.Cargo.String(), 6),
			text("Membro desde", format.DateShort(rec.MembroDesde.String()), 6),
		}},
		{Class: "ficha-personal", Title: "Dados Pessoais", Cells: []Cell{
			text("Nome completo", rec.Nome.String(), 9),
			text("Sexo", rec.Sexo.String(), 3),
			text("Data de nascimento", format.DateShort(rec.DataNascimento.String()), 3),
			text("Estado civil", rec.EstadoCivil.String(), 3),
			text("Nacionalidade", rec.Nacionalidade.String(), 3),
			text("Naturalidade", rec.Naturalidade.String(), 3),
			text("Profissão", rec.Profissao.String(), 6),
			text("Escolaridade", rec.Escolaridade.String(), 6),
		}},
		{Class: "ficha-documents", Title: "Documentos e Contatos", Cells: []Cell{
			text("CPF", format.CPF(rec.CPF.String()), 3),
			text("RG", rec.RG.String(), 3),
			text("Órgão emissor", rec.OrgaoEmissor.String(), 3),
			text("Título de eleitor", rec.TituloEleitor.String(), 3),
			text("Telefone", format.Phone(rec.Telefone.String()), 3),
			text("Celular", format.Phone(rec.Celular.String()), 3),
			text("E-mail", rec.Email.String(), 6),
		}},
		{Class: "ficha-address", Title: "Endereço", Cells: []Cell{
			text("Logradouro", rec.Logradouro.String(), 9),
			text("Número", rec.Numero.String(), 3),
			text("Complemento", rec.Complemento.String(), 4),
			text("Bairro", rec.Bairro.String(), 4),
			text("CEP", rec.CEP.String(), 4),
			text("Cidade", rec.Cidade.String(), 9),
			text("UF", rec.UF.String(), 3),
		}},
		{Class: "ficha-parentage", Title: "Filiação", Cells: []Cell{
			text("Nome do pai", rec.NomePai.String(), 6),
			text("CPF do pai", format.CPF(rec.CPFPai.String()), 3),
			flag("Órfão de pai", rec.OrfaoPai.Bool(), 3),
			text("Nome da mãe", rec.NomeMae.String(), 6),
			text("CPF da mãe", format.CPF(rec.CPFMae.String()), 3),
			flag("Órfão de mãe", rec.OrfaoMae.Bool(), 3),
		}},
		{Class: "ficha-ecclesiastical", Title: "Dados Eclesiásticos", Cells: []Cell{
			text("Data de conversão", format.DateShort(rec.DataConversao.String()), 3),
			text("Local de conversão", rec.LocalConversao.String(), 9),
			text("Data de batismo", format.DateShort(rec.DataBatismo.String()), 3),
			text("Local de batismo", rec.LocalBatismo.String(), 9),
			text("Data de recepção", format.DateShort(rec.DataRecepcao.String()), 3),
			text("Forma de recepção", rec.FormaRecepcao.String(), 3),
			text("Igreja de origem", rec.IgrejaOrigem.String(), 6),
			flag("Batizado no Espírito Santo", rec.BatismoEspiritoSanto.Bool(), 6),
			text("Data do batismo no Espírito Santo", format.DateShort(rec.DataBatismoEspirito.String()), 6),
		}},
	}

	if rec.Married() {
		sections = append(sections, Section{Class: "ficha-marital", Title: "Dados Conjugais", Cells: []Cell{
			text("Nome do cônjuge", rec.NomeConjuge.String(), 9),
			text("CPF do cônjuge", format.CPF(rec.CPFConjuge.String()), 3),
			text("Nascimento do cônjuge", format.DateShort(rec.NascimentoConjuge.String()), 3),
			text("Profissão do cônjuge", rec.ProfissaoConjuge.String(), 5),
			text("Escolaridade do cônjuge", rec.EscolaridadeConjuge.String(), 4),
			text("Data de casamento", format.DateShort(rec.DataCasamento.String()), 4),
			text("Certidão de casamento", rec.CertidaoCasamento.String(), 8),
		}})
	}

	return sections
}

func writeHeader(b *strings.Builder, rec *member.Record, title string) {
	b.WriteString(`<header class="ficha-header">`)
	b.WriteString(`<div class="ficha-heading">`)
	b.WriteString(`<h1>` + format.Escape(title) + `</h1>`)
	if id := rec.Identifier(); id != "" {
		b.WriteString(`<span>Matrícula nº ` + format.Escape(id) + `</span>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(`<div class="ficha-photo">`)
	if src, ok := rec.PhotoSource(); ok {
		b.WriteString(`<img src="` + format.Escape(src) + `" alt="">`)
	} else {
		b.WriteString(`<span>FOTO 3x4</span>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(`</header>`)
}

func writeSection(b *strings.Builder, s Section) {
	b.WriteString(`<section class="ficha-section ` + s.Class + `">`)
	b.WriteString(`<h2 class="ficha-section-title">` + format.Escape(s.Title) + `</h2>`)
	b.WriteString(`<div class="ficha-grid">`)
	for _, c := range s.Cells {
		b.WriteString(`<div class="ficha-cell span-` + strconv.Itoa(c.Span) + `">`)
		b.WriteString(`<label>` + format.Escape(c.Label) + `</label>`)
		b.WriteString(`<span>` + c.HTML() + `</span>`)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></section>`)
}

// writeChildren always prints the table: at least member.MinChildRows rows
// stay available for manual fill-in.
func writeChildren(b *strings.Builder, rec *member.Record) {
	b.WriteString(`<section class="ficha-section ficha-children">`)
	b.WriteString(`<h2 class="ficha-section-title">Filhos`)
	if n := rec.DeclaredChildren(); n > 0 {
		b.WriteString(` <small>(quantidade declarada: ` + strconv.Itoa(n) + `)</small>`)
	}
	b.WriteString(`</h2>`)
	b.WriteString(`<table class="ficha-table"><thead><tr>`)
	b.WriteString(`<th class="ficha-col-index">#</th><th>Nome</th><th class="ficha-col-cpf">CPF</th><th>Observação</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for i, c := range rec.ChildRows() {
		b.WriteString(`<tr class="ficha-child-row">`)
		b.WriteString(`<td class="ficha-col-index">` + strconv.Itoa(i+1) + `</td>`)
		b.WriteString(`<td>` + format.Display(c.Nome.String()) + `</td>`)
		b.WriteString(`<td>` + format.DisplayCPF(c.CPF.String()) + `</td>`)
		b.WriteString(`<td>` + format.Display(c.Observacao.String()) + `</td>`)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></section>`)
}

func writeDeclaration(b *strings.Builder, rec *member.Record) {
	b.WriteString(`<section class="ficha-section ficha-declaration">`)
	b.WriteString(`<h2 class="ficha-section-title">Declaração e Consentimento</h2>`)
	b.WriteString(`<p class="ficha-declaration-text">` + format.Escape(Declaration) + `</p>`)
	b.WriteString(`<div class="ficha-consents">`)
	b.WriteString(`<span>` + format.Checkbox(rec.AutorizacaoDados.Bool()) + ` Autorizo o tratamento dos meus dados pessoais</span>`)
	b.WriteString(`<span>` + format.Checkbox(rec.AutorizacaoImagem.Bool()) + ` Autorizo o uso da minha imagem</span>`)
	b.WriteString(`</div>`)
	b.WriteString(`<div class="ficha-signatures">`)
	b.WriteString(`<div><div class="ficha-signature-line"></div><span>Assinatura do membro</span></div>`)
	b.WriteString(`<div><div class="ficha-signature-line"></div><span>Secretaria</span></div>`)
	b.WriteString(`</div></section>`)
}

func checkbox(checked bool) string {
	return format.Checkbox(checked) + " " + format.DisplayFlag(checked)
}

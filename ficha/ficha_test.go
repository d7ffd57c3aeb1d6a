package ficha

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/carteira/member"
)

func TestMaritalSectionGating(t *testing.T) {
	single := &member.Record{Nome: "Maria", EstadoCivil: "Solteiro(a)", NomeConjuge: "Ignorado"}
	out := Markup(single, "")
	assert.NotContains(t, out, "ficha-marital")
	assert.NotContains(t, out, "Dados Conjugais")
	assert.NotContains(t, out, "Ignorado")

	married := &member.Record{Nome: "Maria", EstadoCivil: "Casado(a)", NomeConjuge: "João Souza", CPFConjuge: "98765432100"}
	out = Markup(married, "")
	assert.Contains(t, out, "ficha-marital")
	assert.Contains(t, out, "Dados Conjugais")
	assert.Contains(t, out, "João Souza")
	assert.Contains(t, out, "987.654.321-00")
}

func TestChildRows(t *testing.T) {
	cases := []struct {
		name   string
		filhos []member.Child
		want   int
	}{
		{"no children", nil, 3},
		{"one child", []member.Child{{Nome: "Ana"}}, 3},
		{"five children", []member.Child{{Nome: "A"}, {Nome: "B"}, {Nome: "C"}, {Nome: "D"}, {Nome: "E"}}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Markup(&member.Record{Nome: "Maria", Filhos: tc.filhos}, "")
			assert.Equal(t, tc.want, strings.Count(out, `class="ficha-child-row"`))
		})
	}
}

func TestDeclaredChildrenCount(t *testing.T) {
	out := Markup(&member.Record{Nome: "Maria", QuantidadeFilhos: "4"}, "")
	assert.Equal(t, 4, strings.Count(out, `class="ficha-child-row"`))
	assert.Contains(t, out, "quantidade declarada: 4")
}

func TestNotesOnlyWhenPresent(t *testing.T) {
	out := Markup(&member.Record{Nome: "Maria"}, "")
	assert.NotContains(t, out, "ficha-notes")

	out = Markup(&member.Record{Nome: "Maria", Observacoes: "linha 1\n<em>linha 2</em>"}, "")
	assert.Contains(t, out, "ficha-notes")
	assert.Contains(t, out, "linha 1<br>&lt;em&gt;linha 2&lt;/em&gt;")
}

func TestEscapesFreeText(t *testing.T) {
	rec := &member.Record{
		Nome:           `<script>alert(1)</script>`,
		LocalConversao: `Templo "Sede"`,
		IgrejaOrigem:   "<img src=x onerror=alert(1)>",
		Filhos:         []member.Child{{Nome: "<b>Ana</b>", Observacao: `"quote"`}},
	}
	out := Markup(rec, `<i>Título</i>`)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img src=x")
	assert.NotContains(t, out, "<b>Ana</b>")
	assert.NotContains(t, out, `"Sede"`)
	assert.NotContains(t, out, `"quote"`)
	assert.NotContains(t, out, "<i>Título</i>")
	assert.Contains(t, out, "&lt;i&gt;Título&lt;/i&gt;")
}

func TestPhotoSource(t *testing.T) {
	out := Markup(&member.Record{Nome: "M", Foto: "javascript:alert(1)"}, "")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "FOTO 3x4")

	out = Markup(&member.Record{Nome: "M", Foto: "https://cdn.example.com/m.jpg"}, "")
	assert.Contains(t, out, `<img src="https://cdn.example.com/m.jpg"`)
}

func TestSectionsAreSelfContained(t *testing.T) {
	sections := Sections(&member.Record{})
	require.Len(t, sections, 6)
	for _, s := range sections {
		span := 0
		for _, c := range s.Cells {
			span += c.Span
		}
		assert.Zero(t, span%12, "section %s spans %d columns", s.Title, span)
	}

	married := Sections(&member.Record{EstadoCivil: "casada"})
	require.Len(t, married, 7)
	assert.Equal(t, "ficha-marital", married[6].Class)
}

func TestConsentCheckboxes(t *testing.T) {
	out := Markup(&member.Record{AutorizacaoDados: true}, "")
	assert.Contains(t, out, "&#9746; Autorizo o tratamento")
	assert.Contains(t, out, "&#9744; Autorizo o uso da minha imagem")
}

func TestDefaultTitle(t *testing.T) {
	assert.Contains(t, Markup(&member.Record{}, "  "), DefaultTitle)
	assert.Contains(t, Markup(&member.Record{}, "Ficha de Batismo"), "Ficha de Batismo")
}

func TestStylesLetLongFormsGrow(t *testing.T) {
	css := Styles()
	assert.Contains(t, css, "min-height: 297mm")
	assert.Contains(t, css, ".doc-print .doc-page { height: auto;")
	assert.NotContains(t, css, "overflow: hidden;\n  display: flex")
}

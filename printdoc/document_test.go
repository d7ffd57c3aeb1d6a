package printdoc

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/carteira"
)

var configBlock = regexp.MustCompile(`(?s)<script type="application/json" id="carteira-config">(.*?)</script>`)

func decodeConfig(t *testing.T, doc string) runtimeConfig {
	t.Helper()
	m := configBlock.FindStringSubmatch(doc)
	require.Len(t, m, 2, "config block present")
	var rc runtimeConfig
	require.NoError(t, json.Unmarshal([]byte(m[1]), &rc))
	return rc
}

func TestCarteiraDocumentPages(t *testing.T) {
	sheets := []string{`<div class="carteira-sheet">A</div>`, `<div class="carteira-sheet">B</div>`}
	doc, err := CarteiraDocument(sheets)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Equal(t, 2, strings.Count(doc, `<div class="doc-page">`))
	assert.Contains(t, doc, "@page { size: 160mm 100mm; margin: 0; }")
	assert.Contains(t, doc, ".doc-page:last-child { break-after: auto;")
	assert.Contains(t, doc, "print-color-adjust: exact")
	assert.Contains(t, doc, "<title>Carteiras de Membro</title>")
	assert.Less(t, strings.Index(doc, ">A<"), strings.Index(doc, ">B<"), "sheet order preserved")
	assert.NotContains(t, doc, "data-client-ip", "card sheets carry no footer")
}

func TestCarteiraDocumentRequiresSheets(t *testing.T) {
	_, err := CarteiraDocument(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, carteira.ErrNoSheets)

	_, err = PrintDocument([]string{}, Meta{})
	assert.ErrorIs(t, err, carteira.ErrNoSheets)
}

func TestDocumentPrintMode(t *testing.T) {
	doc, err := CarteiraDocument([]string{"x"})
	require.NoError(t, err)

	assert.NotContains(t, doc, JSPDFURL, "print mode skips the export libraries")
	assert.NotContains(t, doc, `class="doc-toolbar"`)

	rc := decodeConfig(t, doc)
	assert.Equal(t, carteira.ModePrint, rc.Mode)
	assert.Equal(t, EventPrint, rc.Machine.Auto)
	assert.Equal(t, PageSelector, rc.PageSelector)
	assert.Equal(t, IPUnavailable, rc.IPSentinel)
	assert.EqualValues(t, 1500, rc.IPLookupTimeoutMs)
	assert.Zero(t, rc.ResourceTimeoutMs)
}

func TestDocumentDownloadMode(t *testing.T) {
	doc, err := CarteiraDocument([]string{"x"},
		carteira.WithMode(carteira.ModeDownload),
		carteira.WithFileName("carteiras.pdf"),
		carteira.WithResourceTimeout(5*time.Second),
	)
	require.NoError(t, err)

	assert.Contains(t, doc, HTML2CanvasURL)
	assert.Contains(t, doc, JSPDFURL)

	rc := decodeConfig(t, doc)
	assert.Equal(t, carteira.ModeDownload, rc.Mode)
	assert.Equal(t, EventDownload, rc.Machine.Auto)
	assert.Equal(t, "carteiras.pdf", rc.FileName)
	assert.EqualValues(t, 5000, rc.ResourceTimeoutMs)
}

func TestDocumentToolbar(t *testing.T) {
	doc, err := CarteiraDocument([]string{"x"}, carteira.WithToolbar(true))
	require.NoError(t, err)

	assert.Contains(t, doc, `data-action="print"`)
	assert.Contains(t, doc, `data-action="download"`)
	assert.Contains(t, doc, `data-action="close"`)
	assert.Contains(t, doc, ".doc-toolbar { display: none !important; }")

	rc := decodeConfig(t, doc)
	assert.True(t, rc.Toolbar)
	assert.Empty(t, rc.Machine.Auto)
}

func TestDocumentEscapesTitleAndConfig(t *testing.T) {
	doc, err := CarteiraDocument([]string{"x"},
		carteira.WithTitle("<b>Igreja</b>"),
		carteira.WithFileName("</script><script>alert(1)</script>.pdf"),
	)
	require.NoError(t, err)

	assert.Contains(t, doc, "<title>&lt;b&gt;Igreja&lt;/b&gt;</title>")
	assert.NotContains(t, doc, "</script><script>alert(1)")

	rc := decodeConfig(t, doc)
	assert.Equal(t, "</script><script>alert(1)</script>.pdf", rc.FileName)
}

func TestDocumentEmbedsRuntime(t *testing.T) {
	doc, err := CarteiraDocument([]string{"x"})
	require.NoError(t, err)

	assert.Contains(t, doc, "carteiraRuntime")
	assert.NotContains(t, runtimeJS, "</script", "runtime must be inlinable")
	assert.Less(t, strings.Index(doc, `id="carteira-config"`), strings.Index(doc, "carteiraRuntime"),
		"config is parsed before the runtime runs")
}

func TestPrintDocumentFooter(t *testing.T) {
	meta := Meta{
		Title:       "Fichas",
		GeneratedBy: "Secretaria <Central>",
		DocumentID:  "3f1c2d9e",
		PrintedAt:   time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
	}
	doc, err := PrintDocument([]string{"p1", "p2", "p3"}, meta)
	require.NoError(t, err)

	assert.Contains(t, doc, "@page { size: 210mm 297mm; margin: 0; }")
	assert.Contains(t, doc, "<title>Fichas</title>")
	assert.Equal(t, 3, strings.Count(doc, `<footer class="doc-meta">`))
	assert.Contains(t, doc, "Documento 3f1c2d9e")
	assert.Contains(t, doc, "Impresso em 05/03/2024 14:30")
	assert.Contains(t, doc, "por Secretaria &lt;Central&gt;")
	assert.Contains(t, doc, `<span data-client-ip>indisponível</span>`)
}

func TestPrintDocumentCustomPage(t *testing.T) {
	doc, err := PrintDocument([]string{"p"}, Meta{Page: PageSheet})
	require.NoError(t, err)
	assert.Contains(t, doc, "@page { size: 160mm 100mm; margin: 0; }")
	assert.Contains(t, doc, "<title>Documento</title>")
}

func TestDisabledLookupAndFont(t *testing.T) {
	doc, err := PrintDocument([]string{"p"}, Meta{},
		carteira.WithIPLookup("", 0),
		carteira.WithFontStylesheet(""),
	)
	require.NoError(t, err)
	assert.NotContains(t, doc, `rel="stylesheet"`)

	rc := decodeConfig(t, doc)
	assert.Empty(t, rc.IPLookupURL)
}

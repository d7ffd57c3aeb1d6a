// Package printdoc assembles card sheets and ficha pages into a complete,
// self-contained HTML document that prints itself or saves a PDF on load.
package printdoc

import (
	_ "embed"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/card"
	"github.com/lvillar/carteira/ficha"
	"github.com/lvillar/carteira/format"
)

//go:embed runtime.js
var runtimeJS string

// External scripts loaded in download mode. When either fails to load the
// runtime falls back to printing.
const (
	HTML2CanvasURL = "https://cdnjs.cloudflare.com/ajax/libs/html2canvas/1.4.1/html2canvas.min.js"
	JSPDFURL       = "https://cdnjs.cloudflare.com/ajax/libs/jspdf/2.5.1/jspdf.umd.min.js"
)

// IPUnavailable is written into the footer when the IP lookup fails or
// exceeds its time box.
const IPUnavailable = "indisponível"

// PageSelector matches the nodes rasterized one per PDF page.
const PageSelector = ".doc-page"

const (
	defaultCarteiraTitle = "Carteiras de Membro"
	defaultPrintTitle    = "Documento"
)

// PageSize is a physical page size in millimetres.
type PageSize struct {
	Width  float64
	Height float64
}

var (
	PageA4    = PageSize{Width: ficha.PageWidth, Height: ficha.PageHeight}
	PageSheet = PageSize{Width: card.SheetWidth, Height: card.SheetHeight}
)

// Meta describes the printed document for the per-page footer.
type Meta struct {
	Title       string
	GeneratedBy string
	DocumentID  string
	PrintedAt   time.Time
	Page        PageSize // zero means A4
}

// runtimeConfig is the JSON block read by the embedded runtime.
type runtimeConfig struct {
	Machine           MachineSpec   `json:"machine"`
	Mode              carteira.Mode `json:"mode"`
	Toolbar           bool          `json:"toolbar"`
	FileName          string        `json:"fileName"`
	PageSelector      string        `json:"pageSelector"`
	IPLookupURL       string        `json:"ipLookupUrl"`
	IPLookupTimeoutMs int64         `json:"ipLookupTimeoutMs"`
	IPSentinel        string        `json:"ipSentinel"`
	ResourceTimeoutMs int64         `json:"resourceTimeoutMs"`
	CloseDelayMs      int64         `json:"closeDelayMs"`
}

// CarteiraDocument wraps card sheets into one document whose pages are
// exactly one sheet each.
//
// Example:
//
//	doc, err := printdoc.CarteiraDocument([]string{sheet},
//	    carteira.WithMode(carteira.ModeDownload),
//	    carteira.WithFileName("carteiras.pdf"),
//	)
func CarteiraDocument(sheets []string, opts ...carteira.Option) (string, error) {
	if len(sheets) == 0 {
		return "", carteira.NewError("printdoc.CarteiraDocument", carteira.ErrNoSheets)
	}
	cfg := carteira.NewExportConfig(opts...)
	if cfg.Title == "" {
		cfg.Title = defaultCarteiraTitle
	}
	return assemble(cfg, PageSheet, card.Styles(), "doc-carteira", sheets, ""), nil
}

// PrintDocument wraps arbitrary page fragments, typically ficha pages, into
// a document with a metadata footer on every page.
func PrintDocument(pages []string, meta Meta, opts ...carteira.Option) (string, error) {
	if len(pages) == 0 {
		return "", carteira.NewError("printdoc.PrintDocument", carteira.ErrNoSheets)
	}
	cfg := carteira.NewExportConfig(opts...)
	if cfg.Title == "" {
		cfg.Title = meta.Title
	}
	if cfg.Title == "" {
		cfg.Title = defaultPrintTitle
	}
	size := meta.Page
	if size.Width <= 0 || size.Height <= 0 {
		size = PageA4
	}
	return assemble(cfg, size, ficha.Styles(), "doc-print", pages, footer(meta)), nil
}

func assemble(cfg carteira.ExportConfig, size PageSize, fragmentCSS, bodyClass string, pages []string, pageFooter string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="pt-BR" data-state="idle">` + "\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	b.WriteString("<title>" + format.Escape(cfg.Title) + "</title>\n")
	if cfg.FontStylesheet != "" {
		b.WriteString(`<link rel="stylesheet" href="` + format.Escape(cfg.FontStylesheet) + `">` + "\n")
	}
	b.WriteString("<style>\n")
	b.WriteString(pageCSS(size))
	b.WriteString(fragmentCSS)
	b.WriteString("</style>\n")
	if cfg.Mode == carteira.ModeDownload || cfg.Toolbar {
		b.WriteString(`<script src="` + HTML2CanvasURL + `" defer></script>` + "\n")
		b.WriteString(`<script src="` + JSPDFURL + `" defer></script>` + "\n")
	}
	b.WriteString("</head>\n")
	b.WriteString(`<body class="` + bodyClass + `">` + "\n")
	if cfg.Toolbar {
		writeToolbar(&b)
	}
	b.WriteString(`<main class="doc-pages">` + "\n")
	for _, page := range pages {
		b.WriteString(`<div class="doc-page">`)
		b.WriteString(page)
		b.WriteString(pageFooter)
		b.WriteString("</div>\n")
	}
	b.WriteString("</main>\n")
	b.WriteString(`<script type="application/json" id="carteira-config">`)
	b.Write(configJSON(cfg))
	b.WriteString("</script>\n")
	b.WriteString("<script>\n")
	b.WriteString(runtimeJS)
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}

// configJSON marshals the runtime settings. encoding/json escapes <, > and &
// so the block cannot terminate its script element.
func configJSON(cfg carteira.ExportConfig) []byte {
	rc := runtimeConfig{
		Machine:           Machine(cfg.Mode, cfg.Toolbar),
		Mode:              cfg.Mode,
		Toolbar:           cfg.Toolbar,
		FileName:          cfg.FileName,
		PageSelector:      PageSelector,
		IPLookupURL:       cfg.IPLookupURL,
		IPLookupTimeoutMs: cfg.IPLookupTimeout.Milliseconds(),
		IPSentinel:        IPUnavailable,
		ResourceTimeoutMs: cfg.ResourceTimeout.Milliseconds(),
		CloseDelayMs:      cfg.CloseDelay.Milliseconds(),
	}
	data, _ := json.Marshal(rc) // strings, bools and integers only
	return data
}

func writeToolbar(b *strings.Builder) {
	b.WriteString(`<nav class="doc-toolbar">`)
	b.WriteString(`<button type="button" data-action="print">Imprimir</button>`)
	b.WriteString(`<button type="button" data-action="download">Baixar PDF</button>`)
	b.WriteString(`<button type="button" data-action="close">Fechar</button>`)
	b.WriteString("</nav>\n")
}

func footer(meta Meta) string {
	var parts []string
	if meta.DocumentID != "" {
		parts = append(parts, "Documento "+format.Escape(meta.DocumentID))
	}
	if !meta.PrintedAt.IsZero() {
		parts = append(parts, "Impresso em "+meta.PrintedAt.Format("02/01/2006 15:04"))
	}
	if meta.GeneratedBy != "" {
		parts = append(parts, "por "+format.Escape(meta.GeneratedBy))
	}
	parts = append(parts, `IP <span data-client-ip>`+IPUnavailable+`</span>`)
	return `<footer class="doc-meta">` + strings.Join(parts, " · ") + "</footer>"
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mm"
}

func pageCSS(size PageSize) string {
	w, h := mm(size.Width), mm(size.Height)
	return `@page { size: ` + w + ` ` + h + `; margin: 0; }
html, body { margin: 0; padding: 0; background: #e5e7eb; font-family: 'Inter', Arial, sans-serif; }
* { box-sizing: border-box; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
.doc-pages { display: flex; flex-direction: column; align-items: center; gap: 8mm; padding: 8mm 0; }
.doc-page { position: relative; width: ` + w + `; height: ` + h + `; overflow: hidden; background: #fff; box-shadow: 0 2px 8px rgba(0, 0, 0, .2); }
.doc-meta { position: absolute; left: 0; right: 0; bottom: 3mm; text-align: center; font-size: 7pt; color: #6b7280; }
.doc-toolbar { position: sticky; top: 0; z-index: 10; display: flex; gap: 8px; justify-content: center; padding: 8px; background: #1f2937; }
.doc-toolbar button { font: inherit; padding: 6px 14px; border: 0; border-radius: 4px; background: #f9fafb; cursor: pointer; }
html[data-state="idle"] .doc-toolbar button, html[data-state="waiting"] .doc-toolbar button, html.exporting .doc-toolbar button { opacity: .5; pointer-events: none; }
html.exporting .doc-page { box-shadow: none; }
@media print {
  html, body { background: #fff; }
  .doc-toolbar { display: none !important; }
  .doc-pages { display: block; padding: 0; gap: 0; }
  .doc-page { box-shadow: none; margin: 0; break-after: page; page-break-after: always; }
  .doc-page:last-child { break-after: auto; page-break-after: auto; }
}
`
}

// Package card composes the two-sided member identity card ("carteira") as an
// HTML fragment with fixed physical dimensions.
//
// One call produces one sheet of 160mm x 100mm holding the front and back
// faces side by side, folded along the middle after printing. The builder
// performs no I/O: the photo must already be resolved to an embeddable
// reference and the QR code rendered to an image by the caller.
package card

import (
	"strings"
	"time"

	"github.com/lvillar/carteira/format"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/qrpayload"
)

// Physical dimensions in millimetres.
const (
	SheetWidth  = 160.0
	SheetHeight = 100.0
	FaceWidth   = SheetWidth / 2
	FaceHeight  = SheetHeight
	PhotoWidth  = 35.0
	PhotoHeight = 48.0
	QRSize      = 30.0
)

// NoPhotoText is printed inside the photo box when no photo is usable.
const NoPhotoText = "SEM FOTO"

const defaultHeading = "CARTEIRA DE MEMBRO"

// Markup renders the card sheet for rec. qrDataURL is the rendered QR image;
// when it is not an acceptable image source the QR area is omitted. issuedAt
// is the issue date used when the record has none.
func Markup(rec *member.Record, qrDataURL string, settings member.Settings, issuedAt time.Time) string {
	var b strings.Builder
	b.Grow(4096)

	b.WriteString(`<div class="carteira-sheet">`)
	writeFront(&b, rec, settings, issuedAt)
	writeBack(&b, rec, qrDataURL, settings)
	b.WriteString(`</div>`)

	return b.String()
}

func writeFront(b *strings.Builder, rec *member.Record, settings member.Settings, issuedAt time.Time) {
	b.WriteString(`<section class="carteira-face carteira-front">`)

	b.WriteString(`<header class="carteira-header">`)
	if logo, ok := member.PhotoSource(settings.LogoURL); ok {
		b.WriteString(`<img class="carteira-logo" src="` + format.Escape(logo) + `" alt="">`)
	}
	b.WriteString(`<div class="carteira-brand">`)
	if name := strings.TrimSpace(settings.NomeIgreja); name != "" {
		b.WriteString(`<strong>` + format.Escape(name) + `</strong>`)
	}
	b.WriteString(`<span>` + defaultHeading + `</span>`)
	b.WriteString(`</div></header>`)

	b.WriteString(`<div class="carteira-body">`)
	b.WriteString(`<div class="carteira-photo">`)
	if src, ok := rec.PhotoSource(); ok {
		b.WriteString(`<img src="` + format.Escape(src) + `" alt="Foto de ` + format.Escape(rec.Nome.String()) + `">`)
	} else {
		b.WriteString(`<span class="carteira-photo-empty">` + NoPhotoText + `</span>`)
	}
	b.WriteString(`</div>`)

	b.WriteString(`<div class="carteira-summary">`)
	writeField(b, "carteira-name", "Nome", format.Display(rec.Nome.String()))
	writeField(b, "", "Cargo", format.Display(rec.Cargo.String()))
	writeField(b, "", "Matrícula", format.Display(rec.Identifier()))
	writeField(b, "", "Expedida em", format.Display(qrpayload.IssueDate(rec, issuedAt)))
	writeField(b, "", "Membro desde", format.DisplayDateShort(rec.MembroDesde.String()))
	b.WriteString(`</div>`)
	b.WriteString(`</div>`)

	b.WriteString(`</section>`)
}

func writeBack(b *strings.Builder, rec *member.Record, qrDataURL string, settings member.Settings) {
	b.WriteString(`<section class="carteira-face carteira-back">`)

	b.WriteString(`<div class="carteira-grid">`)
	writeField(b, "carteira-wide", "Filiação", filiation(rec))
	writeField(b, "", "Nascimento", format.DisplayDateShort(rec.DataNascimento.String()))
	writeField(b, "", "Estado civil", format.Display(rec.EstadoCivil.String()))
	b.WriteString(`</div>`)

	b.WriteString(`<div class="carteira-middle">`)
	if src, ok := qrSource(qrDataURL); ok {
		b.WriteString(`<div class="carteira-qr"><img src="` + format.Escape(src) + `" alt="QR Code"></div>`)
	}
	b.WriteString(`<div class="carteira-docs">`)
	writeField(b, "", "CPF", format.DisplayCPF(rec.CPF.String()))
	writeField(b, "", "RG", format.Display(rec.RG.String()))
	b.WriteString(`</div>`)
	b.WriteString(`</div>`)

	b.WriteString(`<div class="carteira-signature">`)
	b.WriteString(`<div class="carteira-signature-line"></div>`)
	b.WriteString(`<strong>` + format.Display(settings.NomeAssinante) + `</strong>`)
	b.WriteString(`<span>` + format.Display(settings.CargoAssinante) + `</span>`)
	b.WriteString(`</div>`)

	if addr := settings.AddressLine(); addr != "" {
		b.WriteString(`<footer class="carteira-address">` + format.Escape(addr) + `</footer>`)
	}

	b.WriteString(`</section>`)
}

func writeField(b *strings.Builder, class, label, valueHTML string) {
	b.WriteString(`<div class="carteira-field`)
	if class != "" {
		b.WriteString(" " + class)
	}
	b.WriteString(`"><label>` + format.Escape(label) + `</label><span>` + valueHTML + `</span></div>`)
}

// filiation prints the father and mother names on separate lines.
func filiation(rec *member.Record) string {
	var lines []string
	for _, name := range []string{rec.NomePai.String(), rec.NomeMae.String()} {
		if name = strings.TrimSpace(name); name != "" {
			lines = append(lines, format.Escape(name))
		}
	}
	if len(lines) == 0 {
		return format.Placeholder
	}
	return strings.Join(lines, "<br>")
}

// qrSource accepts only image data URIs and absolute http(s) URLs.
func qrSource(ref string) (string, bool) {
	src, ok := member.PhotoSource(ref)
	if !ok || strings.HasPrefix(src, "/") {
		return "", false
	}
	return src, true
}

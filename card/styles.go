package card

// Styles returns the CSS for card sheets. Dimensions are physical so the
// printed card is true to size regardless of screen DPI.
func Styles() string {
	return styles
}

const styles = `
.carteira-sheet {
  width: 160mm;
  height: 100mm;
  display: flex;
  box-sizing: border-box;
  background: #fff;
  overflow: hidden;
}
.carteira-face {
  width: 80mm;
  height: 100mm;
  box-sizing: border-box;
  padding: 4mm;
  border: 0.3mm dashed #9aa3ad;
  display: flex;
  flex-direction: column;
  font-family: 'Inter', Arial, sans-serif;
  font-size: 2.6mm;
  color: #1f2933;
  position: relative;
}
.carteira-front { border-right-style: dotted; }
.carteira-header {
  display: flex;
  align-items: center;
  gap: 2mm;
  height: 14mm;
  margin-bottom: 3mm;
  padding-bottom: 2mm;
  border-bottom: 0.5mm solid #1e3a8a;
}
.carteira-logo { height: 12mm; width: auto; }
.carteira-brand { display: flex; flex-direction: column; line-height: 1.2; }
.carteira-brand strong { font-size: 3.2mm; text-transform: uppercase; color: #1e3a8a; }
.carteira-brand span { font-size: 2.4mm; letter-spacing: 0.3mm; font-weight: 600; }
.carteira-body { display: flex; gap: 3mm; }
.carteira-photo {
  width: 35mm;
  height: 48mm;
  flex: 0 0 35mm;
  border: 0.3mm solid #1f2933;
  display: flex;
  align-items: center;
  justify-content: center;
  overflow: hidden;
  background: #f3f4f6;
}
.carteira-photo img { width: 100%; height: 100%; object-fit: cover; }
.carteira-photo-empty { font-size: 3mm; font-weight: 700; color: #9aa3ad; }
.carteira-summary { display: flex; flex-direction: column; gap: 1.6mm; min-width: 0; }
.carteira-field { display: flex; flex-direction: column; min-width: 0; }
.carteira-field label {
  font-size: 1.9mm;
  text-transform: uppercase;
  color: #52606d;
  letter-spacing: 0.2mm;
}
.carteira-field span { font-weight: 600; word-break: break-word; }
.carteira-name span { font-size: 3mm; }
.carteira-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 2mm; }
.carteira-wide { grid-column: 1 / -1; }
.carteira-middle { display: flex; gap: 3mm; margin-top: 3mm; align-items: flex-start; }
.carteira-qr { width: 30mm; height: 30mm; flex: 0 0 30mm; }
.carteira-qr img { width: 30mm; height: 30mm; image-rendering: pixelated; }
.carteira-docs { display: flex; flex-direction: column; gap: 2mm; min-width: 0; }
.carteira-signature {
  margin-top: auto;
  display: flex;
  flex-direction: column;
  align-items: center;
  font-size: 2.3mm;
}
.carteira-signature-line { width: 50mm; border-top: 0.3mm solid #1f2933; margin-bottom: 1mm; }
.carteira-address {
  margin-top: 2mm;
  font-size: 1.9mm;
  text-align: center;
  color: #52606d;
}
`

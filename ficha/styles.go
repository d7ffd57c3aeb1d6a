package ficha

// Styles returns the CSS for A4 registration form pages.
func Styles() string {
	return styles
}

const styles = `
.ficha-page {
  width: 210mm;
  min-height: 297mm;
  box-sizing: border-box;
  padding: 10mm 12mm;
  background: #fff;
  font-family: 'Inter', Arial, sans-serif;
  font-size: 2.7mm;
  color: #111827;
  display: flex;
  flex-direction: column;
  gap: 2.5mm;
}
.doc-print .doc-page { height: auto; min-height: 297mm; overflow: visible; }
.ficha-header { display: flex; justify-content: space-between; align-items: center; }
.ficha-heading h1 { margin: 0; font-size: 5mm; letter-spacing: 0.3mm; color: #1e3a8a; }
.ficha-heading span { font-size: 3mm; color: #4b5563; }
.ficha-photo {
  width: 30mm;
  height: 40mm;
  border: 0.3mm solid #111827;
  display: flex;
  align-items: center;
  justify-content: center;
  overflow: hidden;
  color: #9ca3af;
  font-weight: 700;
}
.ficha-photo img { width: 100%; height: 100%; object-fit: cover; }
.ficha-section { border: 0.3mm solid #9ca3af; break-inside: avoid; }
.ficha-section-title {
  margin: 0;
  padding: 0.8mm 2mm;
  font-size: 2.9mm;
  text-transform: uppercase;
  background: #1e3a8a;
  color: #fff;
}
.ficha-section-title small { text-transform: none; font-weight: 400; }
.ficha-grid { display: grid; grid-template-columns: repeat(12, 1fr); }
.ficha-cell {
  display: flex;
  flex-direction: column;
  padding: 0.8mm 1.5mm;
  border-right: 0.2mm solid #d1d5db;
  border-bottom: 0.2mm solid #d1d5db;
  min-height: 7mm;
  box-sizing: border-box;
}
.ficha-cell label { font-size: 2mm; color: #6b7280; text-transform: uppercase; }
.ficha-cell span { font-weight: 600; word-break: break-word; }
.span-2 { grid-column: span 2; }
.span-3 { grid-column: span 3; }
.span-4 { grid-column: span 4; }
.span-5 { grid-column: span 5; }
.span-6 { grid-column: span 6; }
.span-8 { grid-column: span 8; }
.span-9 { grid-column: span 9; }
.span-12 { grid-column: span 12; }
.ficha-table { width: 100%; border-collapse: collapse; }
.ficha-table th, .ficha-table td {
  border: 0.2mm solid #d1d5db;
  padding: 0.8mm 1.5mm;
  text-align: left;
  height: 6mm;
}
.ficha-table th { font-size: 2mm; text-transform: uppercase; color: #6b7280; }
.ficha-col-index { width: 8mm; text-align: center; }
.ficha-col-cpf { width: 35mm; }
.ficha-notes-body { padding: 1.5mm 2mm; min-height: 10mm; }
.ficha-declaration-text { margin: 1.5mm 2mm; text-align: justify; }
.ficha-consents { display: flex; gap: 8mm; padding: 0 2mm 1.5mm; }
.ficha-signatures { display: flex; justify-content: space-around; padding: 8mm 2mm 2mm; text-align: center; }
.ficha-signature-line { width: 70mm; border-top: 0.3mm solid #111827; margin-bottom: 1mm; }
`

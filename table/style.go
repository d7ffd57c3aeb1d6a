// Package table lays out bordered grids of labelled fields and plain rows on
// an fpdf page: the section grids and the children table of a ficha.
//
// Columns are either fixed widths or a uniform grid of n units; cells span
// one or more columns. Header rows repeat after an automatic page break.
package table

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// FontSpec defines font properties for text rendering.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color RGBColor
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
	Align     string // "L", "C", "R"
}

// LabelStyle is the caption drawn above the value of a labelled cell.
type LabelStyle struct {
	Font  FontSpec
	Color RGBColor
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border        *BorderStyle
	HeaderStyle   *CellStyle
	AlternateRows *[2]CellStyle // even, odd body rows
	CellPadding   Padding
	CellFont      *FontSpec
	Label         *LabelStyle
	LineHeight    float64 // multiple of the font size in mm; 0 means 0.5
}

// DefaultLabel is the caption style of labelled cells.
var DefaultLabel = LabelStyle{
	Font:  FontSpec{Family: "Helvetica", Style: "B", Size: 6.5},
	Color: RGBColor{R: 90, G: 90, B: 90},
}

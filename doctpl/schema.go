// Package doctpl is a declarative page model rendered to PDF with fpdf.
//
// Card sheets and fichas are described as a Document of pages and elements,
// serialisable as JSON, and turned into a PDF by Render. Text is UTF-8 and is
// translated to the cp1252 core fonts, so Portuguese accents survive.
//
// Example JSON:
//
//	{
//	  "title": "Ficha de Cadastro",
//	  "pages": [{
//	    "frame": {"width": 160, "height": 100, "cutMarks": true},
//	    "elements": [
//	      {"type": "rect", "x": 0, "y": 0, "width": 80, "height": 100, "radius": 3},
//	      {"type": "field", "x": 40, "y": 30, "width": 36, "label": "Nome", "text": "Maria"}
//	    ]
//	  }]
//	}
package doctpl

// Document is the top-level template that describes an entire PDF.
type Document struct {
	Title    string  `json:"title,omitempty"`
	Author   string  `json:"author,omitempty"`
	Subject  string  `json:"subject,omitempty"`
	Creator  string  `json:"creator,omitempty"`
	PageSize string  `json:"pageSize,omitempty"` // A4, Letter, Legal (default: A4)
	Margin   *Margin `json:"margin,omitempty"`
	Font     *Font   `json:"font,omitempty"`
	Pages    []Page  `json:"pages"`
	Footer   *Footer `json:"footer,omitempty"`

	// Letterhead is a PDF whose first page is drawn under every page.
	// LetterheadData takes precedence over the Letterhead path.
	Letterhead     string `json:"letterhead,omitempty"`
	LetterheadData []byte `json:"-"`
}

// Margin defines page margins in mm.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Font specifies a core font face.
type Font struct {
	Family string  `json:"family"` // Helvetica, Courier, Times
	Style  string  `json:"style"`  // "", "B", "I", "BI"
	Size   float64 `json:"size"`
}

// Color is an RGB color.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page is a single page of the document.
type Page struct {
	// Frame centres a fixed-size box on the page; absolute coordinates of
	// the page's elements are then relative to the frame's corner.
	Frame    *Frame    `json:"frame,omitempty"`
	Elements []Element `json:"elements"`
}

// Frame is a fixed-size area centred on the page, e.g. a 160x100 mm card
// sheet on A4.
type Frame struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	CutMarks bool    `json:"cutMarks,omitempty"`
}

// Element types.
const (
	TypeHeading   = "heading"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeField     = "field"
	TypeGrid      = "grid"
	TypeTable     = "table"
	TypeImage     = "image"
	TypeQR        = "qr"
	TypeLine      = "line"
	TypeRect      = "rect"
	TypeCheckbox  = "checkbox"
	TypeSpacer    = "spacer"
	TypeHR        = "hr"
	TypeList      = "list"
)

// Element is a single visual element. Type selects which fields apply.
//
// Elements with explicit X/Y (text, field, image, qr, rect, line, checkbox)
// are placed absolutely; the others flow from the cursor.
type Element struct {
	Type string `json:"type"`

	Text  string `json:"text,omitempty"`
	Label string `json:"label,omitempty"` // field caption, checkbox label
	Level int    `json:"level,omitempty"` // heading level 1-6
	Align string `json:"align,omitempty"` // L, C, R (default: L)

	Font  *Font  `json:"font,omitempty"`
	Color *Color `json:"color,omitempty"`

	// Grid
	Fields []GridField `json:"fields,omitempty"`

	// Table
	Columns []TableColumn `json:"columns,omitempty"`
	Rows    [][]string    `json:"rows,omitempty"`

	// Image src is a file path or a base64 data:image/ URI.
	Src    string  `json:"src,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Line
	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	SpacerHeight float64 `json:"spacerHeight,omitempty"`
	LineWidth    float64 `json:"lineWidth,omitempty"`
	Dashed       bool    `json:"dashed,omitempty"`

	// List
	Items   []string `json:"items,omitempty"`
	Ordered bool     `json:"ordered,omitempty"`

	// Rect
	FillColor *Color  `json:"fillColor,omitempty"`
	Border    bool    `json:"border,omitempty"`
	Radius    float64 `json:"radius,omitempty"`

	Checked bool `json:"checked,omitempty"`
}

// GridField is one labelled cell of a grid element, spanning Span of 12
// columns.
type GridField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Span  int    `json:"span"`
}

// TableColumn defines a column in a table element.
type TableColumn struct {
	Header string  `json:"header"`
	Width  float64 `json:"width,omitempty"` // 0 = share remaining space
	Align  string  `json:"align,omitempty"`
}

// Footer is drawn at the bottom of every page.
type Footer struct {
	Text  string `json:"text,omitempty"` // supports {page} and {pages}
	Align string `json:"align,omitempty"`
	Font  *Font  `json:"font,omitempty"`
	Color *Color `json:"color,omitempty"`
}

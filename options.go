package carteira

import "time"

// Mode selects what the generated document does once its resources are ready.
type Mode string

const (
	ModePrint    Mode = "print"
	ModeDownload Mode = "download"
)

// Valid reports whether m is a known output mode.
func (m Mode) Valid() bool {
	return m == ModePrint || m == ModeDownload
}

// Default client-side knobs for generated documents.
const (
	DefaultIPLookupURL     = "https://api.ipify.org?format=json"
	DefaultIPLookupTimeout = 1500 * time.Millisecond
	DefaultFileName        = "documento.pdf"
	DefaultCloseDelay      = 400 * time.Millisecond
)

// Option is a functional option for configuring an assembled document.
type Option func(*ExportConfig)

// ExportConfig holds the resolved export settings of a generated document.
type ExportConfig struct {
	Mode            Mode
	Toolbar         bool
	Title           string
	FileName        string
	IPLookupURL     string // empty disables the lookup
	IPLookupTimeout time.Duration
	ResourceTimeout time.Duration // 0 waits for images and fonts without bound
	CloseDelay      time.Duration
	FontStylesheet  string
}

// WithMode sets the automatic action: ModePrint or ModeDownload.
func WithMode(m Mode) Option {
	return func(c *ExportConfig) {
		c.Mode = m
	}
}

// WithToolbar adds the on-document toolbar. The automatic trigger is then
// suppressed and print, download and close become button actions.
func WithToolbar(enabled bool) Option {
	return func(c *ExportConfig) {
		c.Toolbar = enabled
	}
}

// WithTitle sets the document <title>.
func WithTitle(title string) Option {
	return func(c *ExportConfig) {
		c.Title = title
	}
}

// WithFileName sets the name of the PDF saved in download mode.
func WithFileName(name string) Option {
	return func(c *ExportConfig) {
		c.FileName = name
	}
}

// WithIPLookup configures the footer IP lookup endpoint and its time box.
// An empty url disables the lookup.
func WithIPLookup(url string, timeout time.Duration) Option {
	return func(c *ExportConfig) {
		c.IPLookupURL = url
		c.IPLookupTimeout = timeout
	}
}

// WithResourceTimeout bounds the wait for images and fonts. Zero keeps the
// wait unbounded.
func WithResourceTimeout(d time.Duration) Option {
	return func(c *ExportConfig) {
		c.ResourceTimeout = d
	}
}

// WithFontStylesheet overrides the webfont stylesheet URL. Empty disables it.
func WithFontStylesheet(url string) Option {
	return func(c *ExportConfig) {
		c.FontStylesheet = url
	}
}

// NewExportConfig applies opts over the defaults: print mode, no toolbar,
// bounded IP lookup, unbounded resource wait.
//
// Example:
//
//	cfg := carteira.NewExportConfig(
//	    carteira.WithMode(carteira.ModeDownload),
//	    carteira.WithFileName("carteiras.pdf"),
//	)
func NewExportConfig(opts ...Option) ExportConfig {
	cfg := ExportConfig{
		Mode:            ModePrint,
		FileName:        DefaultFileName,
		IPLookupURL:     DefaultIPLookupURL,
		IPLookupTimeout: DefaultIPLookupTimeout,
		CloseDelay:      DefaultCloseDelay,
		FontStylesheet:  "https://fonts.googleapis.com/css2?family=Inter:wght@400;600;700&display=swap",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.Mode.Valid() {
		cfg.Mode = ModePrint
	}
	if cfg.IPLookupTimeout <= 0 {
		cfg.IPLookupTimeout = DefaultIPLookupTimeout
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	return cfg
}

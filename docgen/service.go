// Package docgen orchestrates a generation request: it normalises the member
// records, embeds their photos, encodes the QR codes and assembles the final
// HTML or PDF document.
package docgen

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/card"
	"github.com/lvillar/carteira/doctpl"
	"github.com/lvillar/carteira/ficha"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/pdfexport"
	"github.com/lvillar/carteira/printdoc"
	"github.com/lvillar/carteira/qrimage"
	"github.com/lvillar/carteira/qrpayload"
)

// Content types of a Result.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

const (
	kindCarteira = "carteira"
	kindFicha    = "ficha"
	formatHTML   = "html"
	formatPDF    = "pdf"
)

// PhotoResolver embeds member photos and the church logo as data URIs.
// *photo.Resolver satisfies it.
type PhotoResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
	Prepare(ctx context.Context, rec *member.Record)
}

// CarteiraRequest asks for the identity cards of Members.
type CarteiraRequest struct {
	Members  []*member.Record
	Settings member.Settings
	Export   []carteira.Option
}

// FichaRequest asks for the registration forms of Members.
type FichaRequest struct {
	Members     []*member.Record
	Title       string
	GeneratedBy string
	Letterhead  []byte
	Export      []carteira.Option
}

// Result is a generated document.
type Result struct {
	ID          string
	ContentType string
	FileName    string
	Body        []byte
}

// Service generates card and ficha documents.
type Service struct {
	clock    carteira.Clock
	photos   PhotoResolver
	settings member.Settings
	qrSize   int
	qrLevel  qrimage.Level
	metrics  *Metrics
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for issue dates and footers.
func WithClock(c carteira.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithPhotoResolver embeds remote photos before rendering. Without one,
// photo references are passed through untouched.
func WithPhotoResolver(p PhotoResolver) Option {
	return func(s *Service) { s.photos = p }
}

// WithSettings sets the branding used when a request carries none.
func WithSettings(settings member.Settings) Option {
	return func(s *Service) { s.settings = settings }
}

// WithQR sets the QR image size in pixels and its error correction level.
func WithQR(size int, level qrimage.Level) Option {
	return func(s *Service) {
		if size > 0 {
			s.qrSize = size
		}
		s.qrLevel = level
	}
}

// WithMetrics records generation metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDGenerator overrides the document id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New returns a Service.
func New(opts ...Option) *Service {
	s := &Service{
		clock:   carteira.SystemClock,
		qrSize:  qrimage.DefaultSize,
		qrLevel: qrimage.LevelM,
		logger:  slog.Default(),
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CarteirasHTML returns the self-printing HTML document with one sheet per
// member.
func (s *Service) CarteirasHTML(ctx context.Context, req CarteiraRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.done(ctx, kindCarteira, formatHTML, len(req.Members), start, res, err) }()

	if len(req.Members) == 0 {
		return nil, carteira.NewError("docgen.CarteirasHTML", carteira.ErrNoMembers)
	}
	issuedAt := s.clock.Now()
	settings := s.branding(ctx, req.Settings)

	sheets := make([]string, 0, len(req.Members))
	for _, rec := range s.records(ctx, req.Members) {
		sheets = append(sheets, card.Markup(rec, s.qr(ctx, rec, issuedAt), settings, issuedAt))
	}
	cfg := carteira.NewExportConfig(req.Export...)
	html, err := printdoc.CarteiraDocument(sheets, req.Export...)
	if err != nil {
		return nil, err
	}
	return &Result{ID: s.newID(), ContentType: ContentTypeHTML, FileName: cfg.FileName, Body: []byte(html)}, nil
}

// CarteirasPDF renders the cards to PDF on the server.
func (s *Service) CarteirasPDF(ctx context.Context, req CarteiraRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.done(ctx, kindCarteira, formatPDF, len(req.Members), start, res, err) }()

	if len(req.Members) == 0 {
		return nil, carteira.NewError("docgen.CarteirasPDF", carteira.ErrNoMembers)
	}
	doc, err := pdfexport.Carteiras(s.records(ctx, req.Members), s.branding(ctx, req.Settings), s.clock.Now())
	if err != nil {
		return nil, err
	}
	return s.pdf(doc, carteira.NewExportConfig(req.Export...).FileName)
}

// FichasHTML returns the self-printing HTML document with one ficha page per
// member and the metadata footer.
func (s *Service) FichasHTML(ctx context.Context, req FichaRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.done(ctx, kindFicha, formatHTML, len(req.Members), start, res, err) }()

	if len(req.Members) == 0 {
		return nil, carteira.NewError("docgen.FichasHTML", carteira.ErrNoMembers)
	}
	id := s.newID()
	pages := make([]string, 0, len(req.Members))
	for _, rec := range s.records(ctx, req.Members) {
		pages = append(pages, ficha.Markup(rec, req.Title))
	}
	meta := printdoc.Meta{
		Title:       titleOr(req.Title),
		GeneratedBy: req.GeneratedBy,
		DocumentID:  id,
		PrintedAt:   s.clock.Now(),
	}
	cfg := carteira.NewExportConfig(req.Export...)
	html, err := printdoc.PrintDocument(pages, meta, req.Export...)
	if err != nil {
		return nil, err
	}
	return &Result{ID: id, ContentType: ContentTypeHTML, FileName: cfg.FileName, Body: []byte(html)}, nil
}

// FichasPDF renders the fichas to PDF on the server.
func (s *Service) FichasPDF(ctx context.Context, req FichaRequest) (res *Result, err error) {
	start := time.Now()
	defer func() { s.done(ctx, kindFicha, formatPDF, len(req.Members), start, res, err) }()

	if len(req.Members) == 0 {
		return nil, carteira.NewError("docgen.FichasPDF", carteira.ErrNoMembers)
	}
	id := s.newID()
	doc, err := pdfexport.Fichas(s.records(ctx, req.Members), pdfexport.FichaOptions{
		Title:       req.Title,
		GeneratedBy: req.GeneratedBy,
		DocumentID:  id,
		PrintedAt:   s.clock.Now(),
		Letterhead:  req.Letterhead,
	})
	if err != nil {
		return nil, err
	}
	res, err = s.pdf(doc, carteira.NewExportConfig(req.Export...).FileName)
	if err != nil {
		return nil, err
	}
	res.ID = id
	return res, nil
}

func (s *Service) pdf(doc *doctpl.Document, fileName string) (*Result, error) {
	var buf bytes.Buffer
	if err := pdfexport.Write(&buf, doc); err != nil {
		return nil, err
	}
	return &Result{ID: s.newID(), ContentType: ContentTypePDF, FileName: fileName, Body: buf.Bytes()}, nil
}

// records copies and normalises the input, then embeds each photo. Members
// are resolved one at a time so only one downloaded image is held at once.
func (s *Service) records(ctx context.Context, in []*member.Record) []*member.Record {
	out := make([]*member.Record, 0, len(in))
	for _, rec := range in {
		if rec == nil {
			rec = &member.Record{}
		}
		c := *rec
		c.Filhos = append([]member.Child(nil), rec.Filhos...)
		c.Normalize()
		if s.photos != nil {
			s.photos.Prepare(ctx, &c)
		}
		out = append(out, &c)
	}
	return out
}

// branding merges req over the service defaults and embeds the logo.
func (s *Service) branding(ctx context.Context, req member.Settings) member.Settings {
	settings := req.Merge(s.settings)
	if s.photos == nil || strings.TrimSpace(settings.LogoURL) == "" {
		return settings
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(settings.LogoURL)), "data:") {
		return settings
	}
	logo, err := s.photos.Resolve(ctx, settings.LogoURL)
	if err != nil {
		s.logger.WarnContext(ctx, "logo not embedded", "error", err)
		return settings
	}
	settings.LogoURL = logo
	return settings
}

// qr encodes the card payload. A failure leaves the QR area out of the card.
func (s *Service) qr(ctx context.Context, rec *member.Record, issuedAt time.Time) string {
	uri, err := qrimage.DataURL(qrpayload.Build(rec, issuedAt), s.qrSize, s.qrLevel)
	if err != nil {
		s.metrics.qrFailed()
		s.logger.WarnContext(ctx, "qr code omitted", "member", rec.Identifier(), "error", err)
		return ""
	}
	return uri
}

func (s *Service) done(ctx context.Context, kind, format string, members int, start time.Time, res *Result, err error) {
	s.metrics.observe(kind, format, members, start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "document generation failed",
			"kind", kind,
			"format", format,
			"members", members,
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, "document generated",
		"kind", kind,
		"format", format,
		"members", members,
		"document_id", res.ID,
		"bytes", len(res.Body),
		"duration", time.Since(start),
	)
}

func titleOr(title string) string {
	if strings.TrimSpace(title) == "" {
		return ficha.DefaultTitle
	}
	return title
}
